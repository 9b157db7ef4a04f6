// service содержит бизнес-логику жизненного цикла учётных записей и сессий:
// регистрацию/вход, выпуск нового access-токена по refresh-токену, logout
// и проверку access-токена для мидлвара.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасном хранилище.
//   - Слот refresh-токена у пользователя один: параллельные входы в один
//     аккаунт оба успешны, авторитетной остаётся последняя записанная сессия
//     (last-writer-wins) — намеренное упрощение, а не дефект.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/canvas-ai-backend/internal/config"
	"github.com/pribylovaa/canvas-ai-backend/internal/password"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"
	"github.com/pribylovaa/canvas-ai-backend/internal/tokens"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Оба случая намеренно неразличимы снаружи (нет оракула существования аккаунта).
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDeactivated — аккаунт деактивирован. Возвращается только ПОСЛЕ
	// успешной проверки пароля. Транспорт: HTTP 401.
	ErrAccountDeactivated = errors.New("account deactivated")

	// ErrEmailTaken — e-mail уже занят другим пользователем (без учёта регистра).
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidToken — токен некорректен по формату/подписи.
	// Транспорт: HTTP 401, наружу неотличим от просроченного.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenStale — refresh-токен подписан корректно, но не совпадает
	// с текущим слотом пользователя (сессия была перезаписана или закрыта).
	// Транспорт: HTTP 401.
	ErrTokenStale = errors.New("token stale")

	// ErrSessionNotFound — в refresh-токене указан userID без аккаунта.
	// Транспорт: HTTP 401.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidEmail — e-mail имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче минимальной длины. Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyName — не заполнено имя или фамилия. Транспорт: HTTP 400.
	ErrEmptyName = errors.New("first and last name are required")
)

// Service описывает бизнес-логику auth-ядра.
type Service struct {
	storage storage.Storage
	tokens  *tokens.Manager
	hasher  *password.Hasher
	cfg     config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, tm *tokens.Manager, hasher *password.Hasher, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		tokens:  tm,
		hasher:  hasher,
		cfg:     cfg,
	}
}
