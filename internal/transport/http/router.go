// Package http собирает HTTP-поверхность сервиса: роутер chi,
// цепочку middleware и служебные эндпоинты (liveness/readiness/metrics).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/handlers"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/middleware"
)

// Pinger — проверка доступности хранилища для readiness-чека.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Pinger опционален: без него /healthz отвечает 200 безусловно.
	Pinger Pinger
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, auth middleware.Authenticator, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // гистограмма длительности по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Публичные маршруты аутентификации.
	root.Post("/auth/signup", h.Signup)
	root.Post("/auth/login", h.Login)
	root.Post("/auth/refresh", h.Refresh)

	// Маршруты под аутентификацией: токен перепроверяется на каждом запросе
	// вместе с актуальным состоянием аккаунта в хранилище.
	root.Group(func(r chi.Router) {
		r.Use(middleware.Auth(auth))

		r.Post("/auth/logout", h.Logout)

		r.Post("/ai/generate-text", h.GenerateText)
		r.Post("/ai/generate-image", h.GenerateImage)
		r.Post("/ai/generate-voice", h.GenerateVoice)
		r.Post("/ai/background-remove", h.BackgroundRemove)
	})

	// Служебные эндпоинты.
	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Pinger != nil {
			if err := opts.Pinger.Ping(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	root.Handle("/metrics", promhttp.Handler())

	return root
}
