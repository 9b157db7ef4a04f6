package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/models"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты пакета postgres:
// - поднимают реальный PostgreSQL через testcontainers-go (postgres:16-alpine);
// - применяют встраиваемые goose-миграции через Storage.Migrate;
// - проверяют happy-path, уникальность email (CITEXT), семантику слота
//   refresh-токена и обработку отменённых контекстов.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres поднимает временный PostgreSQL и возвращает готовое хранилище.
// Без GO_TEST_INTEGRATION тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	st, err := New(ctx, dsn, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func newUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Jane",
		LastName:     "Doe",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestIntegration_SaveUser_And_Lookup_OK — happy-path: сохранение и поиск
// по email (регистронезависимо, CITEXT) и по ID.
func TestIntegration_SaveUser_And_Lookup_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("user@example.com")
	slot := "refresh-slot-hash"
	u.CurrentRefreshToken = &slot

	require.NoError(t, st.SaveUser(context.Background(), u))

	gotByEmail, err := st.UserByEmail(context.Background(), "USER@EXAMPLE.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByEmail.ID)
	require.NotNil(t, gotByEmail.CurrentRefreshToken)
	require.Equal(t, slot, *gotByEmail.CurrentRefreshToken)
	require.WithinDuration(t, u.CreatedAt, gotByEmail.CreatedAt, time.Second)

	gotByID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, gotByID.Email)
	require.True(t, gotByID.IsActive)
	require.Nil(t, gotByID.LastLoginAt)
}

// TestIntegration_SaveUser_UniqueEmail_CaseInsensitive — конфликт уникальности
// по email при различии только в регистре, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueEmail_CaseInsensitive(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	require.NoError(t, st.SaveUser(context.Background(), newUser("user@example.com")))

	err := st.SaveUser(context.Background(), newUser("USER@EXAMPLE.COM"))
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_UpdateSession — перезапись слота refresh-токена фиксирует
// время последнего входа; для отсутствующего id — storage.ErrNotFound.
func TestIntegration_UpdateSession(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	loginAt := time.Now().UTC()
	require.NoError(t, st.UpdateSession(context.Background(), u.ID, "new-slot", loginAt))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentRefreshToken)
	require.Equal(t, "new-slot", *got.CurrentRefreshToken)
	require.NotNil(t, got.LastLoginAt)
	require.WithinDuration(t, loginAt, *got.LastLoginAt, time.Second)

	err = st.UpdateSession(context.Background(), uuid.New(), "slot", loginAt)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_ClearRefreshToken_Idempotent — очистка слота обнуляет его;
// повторная очистка и очистка несуществующего id — не ошибка.
func TestIntegration_ClearRefreshToken_Idempotent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("user@example.com")
	slot := "slot-hash"
	u.CurrentRefreshToken = &slot
	require.NoError(t, st.SaveUser(context.Background(), u))

	require.NoError(t, st.ClearRefreshToken(context.Background(), u.ID))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Nil(t, got.CurrentRefreshToken)

	require.NoError(t, st.ClearRefreshToken(context.Background(), u.ID))
	require.NoError(t, st.ClearRefreshToken(context.Background(), uuid.New()))
}

// TestIntegration_SetActive — деактивация и активация аккаунта.
func TestIntegration_SetActive(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	require.NoError(t, st.SetActive(context.Background(), u.ID, false))
	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.NoError(t, st.SetActive(context.Background(), u.ID, true))
	got, err = st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)

	err = st.SetActive(context.Background(), uuid.New(), false)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_Lookup_NotFound — поиск отсутствующих записей.
func TestIntegration_Lookup_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_DeadlineBecomesUnavailable — истёкший дедлайн контекста
// виден вызывающему как транзиентная storage.ErrUnavailable.
func TestIntegration_DeadlineBecomesUnavailable(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	err := st.SaveUser(ctx, newUser("deadline@example.com"))
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrUnavailable)
}

// TestIntegration_Ping — health-чек живой БД.
func TestIntegration_Ping(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	require.NoError(t, st.Ping(context.Background()))
}
