package password

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_OK(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "secret1", hash)

	require.True(t, h.Verify(ctx, "secret1", hash))
	require.False(t, h.Verify(ctx, "wrong-password", hash))
}

// Два хэша одного пароля различаются (соль), но оба проверяются.
func TestHash_Salted(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	h1, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	h2, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.True(t, h.Verify(ctx, "secret1", h1))
	require.True(t, h.Verify(ctx, "secret1", h2))
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost, 2)

	require.False(t, h.Verify(context.Background(), "secret1", "not-a-bcrypt-hash"))
	require.False(t, h.Verify(context.Background(), "secret1", ""))
}

func TestHash_CancelledContext(t *testing.T) {
	t.Parallel()

	// Один слот, и он занят: ожидание упирается в отменённый контекст.
	h := NewHasher(bcrypt.MinCost, 1)
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret1")
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, h.Verify(ctx, "secret1", "whatever"))
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHasher(-1, 0)
	require.Equal(t, bcrypt.DefaultCost, h.cost)
	require.Greater(t, cap(h.sem), 0)
}
