// postgres — реализация storage.Storage поверх пула соединений pgx.
//
// Пул ограничивает конкуренцию обращений к БД (лишние запросы ждут свободного
// соединения). Каждый вызов получает собственный дедлайн (opCtx), поэтому
// обращение к хранилищу не может зависнуть бесконечно: таймаут наружу виден
// как транзиентная storage.ErrUnavailable.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/storage"
	"github.com/pribylovaa/canvas-ai-backend/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

type Storage struct {
	db        *pgxpool.Pool
	dbURL     string
	opTimeout time.Duration
}

// New создает новое подключение к PostgreSQL.
// Ping выполняется с ограниченным числом ретраев и фибоначчи-бэкоффом:
// старт сервиса переживает короткую недоступность БД, но не ждёт её вечно.
func New(ctx context.Context, dbURL string, opTimeout time.Duration) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, dbURL: dbURL, opTimeout: opTimeout}, nil
}

// Migrate применяет встраиваемые goose-миграции.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	db, err := sql.Open("pgx", s.dbURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Ping проверяет доступность БД (используется health-чеком).
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.postgres.Ping"

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.db.Ping(opCtx); err != nil {
		return classify(op, err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.db.Close()
}

// opCtx навешивает дедлайн на одно обращение к БД (если настроен).
func (s *Storage) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.opTimeout)
}

// classify переводит инфраструктурные сбои в storage.ErrUnavailable.
// Таймаут/обрыв — транзиентны; прочее отдаём как есть.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
