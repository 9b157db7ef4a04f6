package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/models"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveUser создает нового пользователя в БД.
// Слот refresh-токена входит в тот же INSERT: аккаунт и сессия создаются атомарно,
// частичного состояния «аккаунт есть, сессия потерялась» не бывает.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		INSERT INTO users(id, email, password_hash, first_name, last_name,
			is_active, current_refresh_token, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.CurrentRefreshToken,
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return classify(op, storage.ErrAlreadyExists)
		}

		return classify(op, err)
	}

	return nil
}

// UserByEmail находит пользователя по email.
// Колонка email — CITEXT, сравнение регистронезависимо на стороне БД.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		SELECT id, email, password_hash, first_name, last_name,
			is_active, current_refresh_token, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return s.scanUser(ctx, op, query, email)
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		SELECT id, email, password_hash, first_name, last_name,
			is_active, current_refresh_token, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return s.scanUser(ctx, op, query, id)
}

// UpdateSession перезаписывает слот refresh-токена и время последнего входа.
func (s *Storage) UpdateSession(ctx context.Context, id uuid.UUID, refreshHash string, lastLoginAt time.Time) error {
	const op = "storage.postgres.UpdateSession"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET current_refresh_token = $2, last_login_at = $3, updated_at = $4
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, refreshHash, lastLoginAt, time.Now().UTC())
	if err != nil {
		return classify(op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return classify(op, storage.ErrNotFound)
	}

	return nil
}

// ClearRefreshToken очищает слот refresh-токена.
// Повторный вызов и вызов для несуществующего id — не ошибка (идемпотентность logout).
func (s *Storage) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.ClearRefreshToken"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET current_refresh_token = NULL, updated_at = $2
		WHERE id = $1
	`

	if _, err := s.db.Exec(ctx, query, id, time.Now().UTC()); err != nil {
		return classify(op, err)
	}

	return nil
}

// SetActive включает/выключает аккаунт.
func (s *Storage) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const op = "storage.postgres.SetActive"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET is_active = $2, updated_at = $3
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return classify(op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return classify(op, storage.ErrNotFound)
	}

	return nil
}

// scanUser — общая часть выборки одной строки users.
func (s *Storage) scanUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.CurrentRefreshToken,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, classify(op, storage.ErrNotFound)
		}

		return nil, classify(op, err)
	}

	return &user, nil
}
