package middleware

import (
	"log/slog"
	"net/http"

	logctx "github.com/pribylovaa/canvas-ai-backend/internal/pkg/log"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/response"
)

// Recover перехватывает panic, конвертирует в 500 и пишет унифицированный ответ.
// Детали паники не утекают на клиент.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					response.JSON(w, http.StatusInternalServerError, response.Envelope{
						Success: false,
						Message: "Internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
