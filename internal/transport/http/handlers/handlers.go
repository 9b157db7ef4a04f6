// handlers содержит HTTP-обработчики REST-эндпоинтов.
// Здесь выполняется только разбор входа, вызов сервисного слоя/клиентов
// и сериализация ответа в единый конверт; бизнес-логика живёт в service.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pribylovaa/canvas-ai-backend/internal/service"
)

// AIClient — контракт генеративного апстрима (OpenAI).
type AIClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt, size string) (string, error)
	GenerateSpeech(ctx context.Context, text, voice string, speed float64) ([]byte, error)
}

// BackgroundRemover — контракт апстрима удаления фона (remove.bg).
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, image io.Reader, filename string) ([]byte, error)
}

// Handlers агрегирует зависимости обработчиков.
// ai и bg могут быть nil, если соответствующий API-ключ не сконфигурирован —
// тогда эндпоинты генерации отвечают 500.
type Handlers struct {
	auth *service.Service
	ai   AIClient
	bg   BackgroundRemover
}

// New создаёт Handlers.
func New(auth *service.Service, ai AIClient, bg BackgroundRemover) *Handlers {
	return &Handlers{auth: auth, ai: ai, bg: bg}
}

// decodeJSON — разбор JSON-тела запроса. Неизвестные поля допускаются:
// клиенты могут класть token в тело наряду с полезной нагрузкой.
func decodeJSON(r *http.Request, value any) error {
	return json.NewDecoder(r.Body).Decode(value)
}
