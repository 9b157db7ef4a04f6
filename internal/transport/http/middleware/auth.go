package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pribylovaa/canvas-ai-backend/internal/models"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/response"
)

// Authenticator проверяет access-токен и возвращает личность запроса.
// Реализуется сервисным слоем (service.Service.Authenticate).
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.Identity, error)
}

type identityKey struct{}

// IdentityFrom достаёт личность аутентифицированного запроса из контекста.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}

// Auth — пер-запросный шлюз аутентификации.
//
// Кандидат-токен извлекается по приоритету источников (заголовок Authorization,
// поле token в теле, параметр token в query) — выигрывает первый найденный.
// Дальше токен проверяется сервисом: подпись, срок И актуальное состояние
// аккаунта в хранилище — деактивация действует немедленно, даже против
// непросроченного токена.
//
// Все причины отказа в доверии наружу схлопываются в один 401 Unauthenticated;
// различия остаются в серверных логах. Транзиентная недоступность хранилища —
// не отказ в доверии: она уходит как 503, валидная сессия не объявляется мёртвой.
// В контекст кладётся только минимальная личность {userID, email} —
// никаких сырых токенов.
func Auth(auth Authenticator) Middleware {
	extractors := []TokenExtractor{
		FromAuthHeader,
		FromBody,
		FromQuery,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractToken(r, extractors...)
			if !ok {
				response.Unauthenticated(w)
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, storage.ErrUnavailable) {
					response.Error(w, r, err)
					return
				}

				response.Unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
