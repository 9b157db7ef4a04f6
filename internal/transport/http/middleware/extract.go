package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
)

// maxBodyPeek ограничивает объём тела, просматриваемый при извлечении токена.
const maxBodyPeek = 1 << 20 // 1 MiB

// TokenExtractor — одна стратегия извлечения кандидат-токена из запроса.
// Стратегии взаимозаменяемы и выстраиваются в приоритетный список.
type TokenExtractor func(r *http.Request) (string, bool)

// ExtractToken прогоняет стратегии по порядку; выигрывает первый найденный токен.
func ExtractToken(r *http.Request, extractors ...TokenExtractor) (string, bool) {
	for _, extract := range extractors {
		if token, ok := extract(r); ok {
			return token, true
		}
	}

	return "", false
}

// FromAuthHeader извлекает Bearer-токен из заголовка Authorization.
func FromAuthHeader(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

// FromBody извлекает поле token из JSON-тела запроса.
// Просматривается не больше maxBodyPeek байт; тело восстанавливается
// ЦЕЛИКОМ (прочитанный префикс + остаток потока) — нижестоящий обработчик
// никогда не получает усечённый reader. Тело с заявленной длиной сверх
// лимита не просматривается вовсе.
func FromBody(r *http.Request) (string, bool) {
	if r.Body == nil {
		return "", false
	}

	if r.ContentLength > maxBodyPeek {
		return "", false
	}

	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || ct != "application/json" {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if err != nil {
		return "", false
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	return payload.Token, payload.Token != ""
}

// FromQuery извлекает параметр token из строки запроса.
func FromQuery(r *http.Request) (string, bool) {
	token := r.URL.Query().Get("token")
	return token, token != ""
}
