// response стандартизирует JSON-ответы HTTP-слоя.
//
// Конверт ответа единый: {success, message?, data?, errors?};
// первичный сигнал несёт HTTP-статус (200/201 успех, 400 валидация,
// 401 аутентификация, 409 конфликт, 500 внутренняя, 503 транзиентная).
//
// Безопасность:
//   - наружу уходят только короткие фиксированные сообщения;
//   - детали внутренних ошибок остаются в серверных логах;
//   - хэш пароля и секреты подписи не попадают в ответ никогда.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/canvas-ai-backend/internal/pkg/log"
	"github.com/pribylovaa/canvas-ai-backend/internal/service"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"
)

// FieldError — одна ошибка валидации входных данных.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope — корневой объект любого ответа API.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// JSON пишет произвольный конверт с нужным статусом.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK — успешный ответ с данными.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// ValidationFailed — 400 с перечнем ошибок по полям.
func ValidationFailed(w http.ResponseWriter, errs []FieldError) {
	JSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation errors",
		Errors:  errs,
	})
}

// Unauthenticated — единый 401 мидлвара: все причины отказа
// (нет токена/подпись/срок/аккаунт) снаружи неразличимы.
func Unauthenticated(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, Envelope{
		Success: false,
		Message: "Unauthenticated",
	})
}

// Error маппит доменные ошибки на статус и безопасное сообщение.
// Для 5xx детали пишутся в request-scoped лог, но не в тело ответа.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)

	if status >= http.StatusInternalServerError {
		log.From(r.Context()).Error("request_failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("err", err.Error()),
		)
	}

	JSON(w, status, Envelope{Success: false, Message: message})
}

// mapError — таблица соответствия доменных ошибок статусам/сообщениям.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "Validation errors"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "Validation errors"
	case errors.Is(err, service.ErrEmptyName):
		return http.StatusBadRequest, "Validation errors"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "User already exists with this email"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrAccountDeactivated):
		return http.StatusUnauthorized, "Account is deactivated"
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenStale),
		errors.Is(err, service.ErrSessionNotFound):
		// Снаружи все причины отказа по refresh-токену неразличимы.
		return http.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
