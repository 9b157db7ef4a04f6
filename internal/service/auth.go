package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/models"
	"github.com/pribylovaa/canvas-ai-backend/internal/pkg/log"
	"github.com/pribylovaa/canvas-ai-backend/internal/pkg/redact"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage"
	"github.com/pribylovaa/canvas-ai-backend/internal/tokens"

	"github.com/google/uuid"
)

// SignupInput — данные регистрации.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult — результат регистрации/входа: пользователь и пара токенов.
// PasswordHash присутствует в User только внутри процесса; транспорт
// сериализует наружу исключительно id/email/firstName/lastName.
type AuthResult struct {
	User   *models.User
	Tokens models.TokenPair
}

// Signup регистрирует нового пользователя и открывает сессию.
// Аккаунт и слот refresh-токена записываются одним INSERT — частичного
// состояния «аккаунт создан, сессия потерялась» не возникает.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	const op = "service.auth.Signup"

	normEmail, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyName)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		log.From(ctx).Error("password_hash_failed",
			slog.String("op", op),
			slog.String("password", redact.Password()),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	pair, err := s.issuePair(uuid.New(), normEmail, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshHash := hashToken(pair.RefreshToken)
	user := &models.User{
		ID:                  pair.userID,
		Email:               normEmail,
		PasswordHash:        hashedPassword,
		FirstName:           firstName,
		LastName:            lastName,
		IsActive:            true,
		CurrentRefreshToken: &refreshHash,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AuthResult{User: user, Tokens: pair.TokenPair}, nil
}

// Login выполняет вход по email+пароль.
// Отсутствующий аккаунт и неверный пароль дают ОДИНАКОВУЮ ошибку.
// Пароль проверяется ДО флага isActive: деактивация не раскрывает
// существование аккаунта тому, кто не знает пароль.
// Успешный вход перезаписывает слот refresh-токена — предыдущая сессия
// молча отзывается.
func (s *Service) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	const op = "service.auth.Login"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(pass) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(ctx, pass, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsActive {
		log.From(ctx).Warn("login_deactivated_account",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrAccountDeactivated)
	}

	now := time.Now().UTC()
	pair, err := s.issuePair(user.ID, user.Email, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshHash := hashToken(pair.RefreshToken)
	if err := s.storage.UpdateSession(ctx, user.ID, refreshHash, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.CurrentRefreshToken = &refreshHash
	user.LastLoginAt = &now

	return &AuthResult{User: user, Tokens: pair.TokenPair}, nil
}

// Refresh выпускает новый access-токен по refresh-токену.
// Refresh-токен НЕ ротируется. Полномочия токена — подпись/срок ПЛЮС точное
// совпадение с текущим слотом пользователя: перезаписанный или очищенный слот
// делает токен устаревшим (ErrTokenStale) независимо от срока действия.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	const op = "service.auth.Refresh"

	uid, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, mapTokenErr(err))
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	presented := hashToken(refreshToken)
	if user.CurrentRefreshToken == nil ||
		!hmac.Equal([]byte(*user.CurrentRefreshToken), []byte(presented)) {
		log.From(ctx).Warn("refresh_stale",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("token", redact.Token()),
		)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, ErrTokenStale)
	}

	accessToken, expiresAt, err := s.tokens.IssueAccess(user.ID, user.Email, time.Now().UTC())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, expiresAt, nil
}

// Logout очищает слот refresh-токена пользователя.
// Идемпотентен: повторный вызов и вызов без активной сессии — не ошибка.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.Logout"

	if err := s.storage.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Authenticate проверяет access-токен и возвращает личность запроса.
// Помимо подписи и срока перепроверяется состояние аккаунта в хранилище:
// деактивация действует немедленно, даже против непросроченных токенов.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (models.Identity, error) {
	const op = "service.auth.Authenticate"

	uid, _, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%s: %w", op, mapTokenErr(err))
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return models.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrAccountDeactivated)
	}

	return models.Identity{UserID: user.ID, Email: user.Email}, nil
}

// issuedPair — внутренний результат выпуска пары токенов.
type issuedPair struct {
	models.TokenPair
	userID uuid.UUID
}

// issuePair выпускает пару access+refresh. Чистая операция без обращений к БД.
func (s *Service) issuePair(userID uuid.UUID, email string, now time.Time) (issuedPair, error) {
	const op = "service.auth.issuePair"

	accessToken, accessExpiresAt, err := s.tokens.IssueAccess(userID, email, now)
	if err != nil {
		return issuedPair{}, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, _, err := s.tokens.IssueRefresh(userID, now)
	if err != nil {
		return issuedPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return issuedPair{
		TokenPair: models.TokenPair{
			AccessToken:     accessToken,
			RefreshToken:    refreshToken,
			AccessExpiresAt: accessExpiresAt,
		},
		userID: userID,
	}, nil
}

// hashToken — SHA-256-хэш токена в base64 (в слоте БД токен не хранится в открытом виде).
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// mapTokenErr переводит ошибки пакета tokens в доменные.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, tokens.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, tokens.ErrInvalidToken):
		return ErrInvalidToken
	default:
		return err
	}
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю (длина >= 6).
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len([]rune(pw)) < 6 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
