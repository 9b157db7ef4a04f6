package tokens

import (
	"testing"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "unit-access-secret",
		RefreshSecret:   "unit-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
		Issuer:          "canvas-ai-backend",
	}
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testCfg())
	require.NoError(t, err)
	return m
}

func TestNewManager_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testCfg()
	cfg.AccessSecret = ""
	_, err := NewManager(cfg)
	require.Error(t, err)

	cfg = testCfg()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err = NewManager(cfg)
	require.Error(t, err)

	cfg = testCfg()
	cfg.AccessTokenTTL = 0
	_, err = NewManager(cfg)
	require.Error(t, err)
}

func TestAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := uuid.New()
	now := time.Now().UTC()

	token, expiresAt, err := m.IssueAccess(uid, "user@example.com", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, now.Add(testCfg().AccessTokenTTL), expiresAt, time.Second)

	gotUID, gotEmail, err := m.VerifyAccess(token)
	require.NoError(t, err)
	require.Equal(t, uid, gotUID)
	require.Equal(t, "user@example.com", gotEmail)
}

func TestRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := uuid.New()

	token, _, err := m.IssueRefresh(uid, time.Now().UTC())
	require.NoError(t, err)

	gotUID, err := m.VerifyRefresh(token)
	require.NoError(t, err)
	require.Equal(t, uid, gotUID)
}

// Access-токен не должен проходить проверку refresh и наоборот:
// секреты независимы.
func TestVerify_CrossSecretRejected(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := uuid.New()
	now := time.Now().UTC()

	accessToken, _, err := m.IssueAccess(uid, "user@example.com", now)
	require.NoError(t, err)

	_, err = m.VerifyRefresh(accessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	refreshToken, _, err := m.IssueRefresh(uid, now)
	require.NoError(t, err)

	_, _, err = m.VerifyAccess(refreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := uuid.New()

	// Выпуск в прошлом за пределами TTL и leeway.
	past := time.Now().UTC().Add(-testCfg().AccessTokenTTL - time.Minute)
	token, _, err := m.IssueAccess(uid, "user@example.com", past)
	require.NoError(t, err)

	_, _, err = m.VerifyAccess(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	m := newManager(t)

	_, _, err := m.VerifyAccess("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyRefresh("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Токен, подписанный чужим секретом, отклоняется даже с корректными клеймами.
func TestVerify_ForeignSecret(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	uid := uuid.New()

	claims := jwt.MapClaims{
		"userId": uid.String(),
		"sub":    uid.String(),
		"iss":    testCfg().Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	_, _, err = m.VerifyAccess(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyRefresh(forged)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	m := newManager(t)

	other := testCfg()
	other.Issuer = "someone-else"
	om, err := NewManager(other)
	require.NoError(t, err)

	token, _, err := om.IssueAccess(uuid.New(), "user@example.com", time.Now().UTC())
	require.NoError(t, err)

	_, _, err = m.VerifyAccess(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
