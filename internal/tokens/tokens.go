// tokens — выпуск и проверка access/refresh-токенов (JWT, HS256).
//
// Access и refresh подписываются НЕЗАВИСИМЫМИ секретами: компрометация
// одного секрета не позволяет подделать токены другого типа. Выпуск и
// проверка — чистые функции без разделяемого состояния, Manager безопасен
// для конкурентного использования.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken — токен некорректен по формату/подписи.
	// Транспорт: HTTP 401 (наружу не отличим от просроченного).
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	// Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")
)

// accessClaims — клеймы access-токена.
type accessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// refreshClaims — клеймы refresh-токена (email в refresh не кладём).
type refreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет токены. Конфигурация неизменяемая,
// передаётся явно при конструировании (никаких чтений окружения здесь).
type Manager struct {
	cfg config.AuthConfig
}

// NewManager создаёт Manager, проверяя инварианты конфигурации.
func NewManager(cfg config.AuthConfig) (*Manager, error) {
	const op = "tokens.NewManager"

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%s: empty signing secret", op)
	}

	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%s: access and refresh secrets must differ", op)
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("%s: token TTLs must be positive", op)
	}

	return &Manager{cfg: cfg}, nil
}

// IssueAccess выпускает access-токен с абсолютным сроком истечения.
func (m *Manager) IssueAccess(userID uuid.UUID, email string, now time.Time) (string, time.Time, error) {
	const op = "tokens.IssueAccess"

	expiresAt := now.Add(m.cfg.AccessTokenTTL)
	claims := accessClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.AccessSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// IssueRefresh выпускает refresh-токен.
func (m *Manager) IssueRefresh(userID uuid.UUID, now time.Time) (string, time.Time, error) {
	const op = "tokens.IssueRefresh"

	expiresAt := now.Add(m.cfg.RefreshTokenTTL)
	claims := refreshClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// VerifyAccess проверяет access-токен и возвращает userID и email.
func (m *Manager) VerifyAccess(tokenStr string) (uuid.UUID, string, error) {
	const op = "tokens.VerifyAccess"

	var claims accessClaims
	if err := m.verify(tokenStr, &claims, m.cfg.AccessSecret); err != nil {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, claims.Email, nil
}

// VerifyRefresh проверяет refresh-токен и возвращает userID.
func (m *Manager) VerifyRefresh(tokenStr string) (uuid.UUID, error) {
	const op = "tokens.VerifyRefresh"

	var claims refreshClaims
	if err := m.verify(tokenStr, &claims, m.cfg.RefreshSecret); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}

// verify — общая часть проверки: только HS256, issuer и leeway 5s.
func (m *Manager) verify(tokenStr string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}

			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(m.cfg.Issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}

		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
