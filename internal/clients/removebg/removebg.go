// removebg — тонкий клиент remove.bg для прокси удаления фона.
// Изображение пересылается как multipart, результат возвращается байтами;
// на сервере ничего не сохраняется.
package removebg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.remove.bg/v1.0/removebg"

// Client — клиент remove.bg API.
type Client struct {
	apiKey   string
	endpoint string
	httpc    *http.Client
}

// New создаёт клиент с явным API-ключом.
func New(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// RemoveBackground отправляет изображение в remove.bg и возвращает PNG без фона.
func (c *Client) RemoveBackground(ctx context.Context, image io.Reader, filename string) ([]byte, error) {
	const op = "clients.removebg.RemoveBackground"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image_file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Тело ошибки не пересылаем клиенту, только статус — детали в логах вызывающего.
		return nil, fmt.Errorf("%s: upstream status %d", op, resp.StatusCode)
	}

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
