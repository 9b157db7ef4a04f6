package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable — хранилище временно недоступно (таймаут/обрыв соединения).
	// Транзиентная ошибка: ретраи — ответственность вызывающего, сервис её не скрывает.
	ErrUnavailable = errors.New("storage unavailable")
)

// UserStorage выполняет операции над пользователями.
// Поиск по email регистронезависим.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	// Запись содержит слот refresh-токена — создание аккаунта и привязка
	// сессии выполняются одним INSERT (атомарно).
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email (без учёта регистра).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateSession перезаписывает слот refresh-токена и время последнего входа.
	// Перезапись — это отзыв предыдущей сессии (last-writer-wins).
	UpdateSession(ctx context.Context, id uuid.UUID, refreshHash string, lastLoginAt time.Time) error
	// ClearRefreshToken очищает слот refresh-токена (logout). Идемпотентна.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	// SetActive включает/выключает аккаунт.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	Close()
}
