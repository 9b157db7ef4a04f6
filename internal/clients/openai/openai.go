// openai — тонкая обёртка над OpenAI API для прокси-эндпоинтов генерации.
// Никакого внутреннего состояния: запрос пересылается, ответ возвращается.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrEmptyResponse — апстрим ответил без содержимого.
var ErrEmptyResponse = errors.New("openai: empty response")

// Client — клиент генерации текста/изображений/озвучки.
type Client struct {
	api oai.Client
}

// New создаёт клиент с явным API-ключом.
func New(apiKey string) *Client {
	return &Client{api: oai.NewClient(option.WithAPIKey(apiKey))}
}

// GenerateText — chat-completion (gpt-4o-mini, temperature 0.7).
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	const op = "clients.openai.GenerateText"

	resp, err := c.api.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: oai.ChatModelGPT4oMini,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
		Temperature: oai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage — DALL·E 3; size в формате OpenAI ("1024x1024" и т.п.).
// Возвращает URL сгенерированного изображения.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	const op = "clients.openai.GenerateImage"

	resp, err := c.api.Images.Generate(ctx, oai.ImageGenerateParams{
		Model:   oai.ImageModelDallE3,
		Prompt:  prompt,
		N:       oai.Int(1),
		Size:    oai.ImageGenerateParamsSize(size),
		Quality: oai.ImageGenerateParamsQualityStandard,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return resp.Data[0].URL, nil
}

// GenerateSpeech — TTS (tts-1). Возвращает mp3-байты.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	const op = "clients.openai.GenerateSpeech"

	res, err := c.api.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model: oai.SpeechModelTTS1,
		Voice: oai.AudioSpeechNewParamsVoice(voice),
		Input: text,
		Speed: oai.Float(speed),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return audio, nil
}
