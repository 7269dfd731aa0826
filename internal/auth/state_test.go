package auth_test

import (
	"context"
	"testing"
	"time"

	"planboard/internal/auth"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStateStore(t *testing.T) (*auth.RedisStateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewRedisStateStore(client, 10*time.Minute), mr
}

func TestRedisStateStore_SingleUse(t *testing.T) {
	// Arrange
	store, _ := newRedisStateStore(t)
	ctx := context.Background()
	state, err := store.Issue(ctx, "github")
	require.NoError(t, err)

	// Act
	first, err1 := store.Consume(ctx, state, "github")
	second, err2 := store.Consume(ctx, state, "github")

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, first)
	assert.False(t, second)
}

func TestRedisStateStore_ProviderMismatchAndExpiry(t *testing.T) {
	// Arrange
	store, mr := newRedisStateStore(t)
	ctx := context.Background()
	mismatched, _ := store.Issue(ctx, "github")
	expiring, _ := store.Issue(ctx, "google")

	// Act
	okMismatch, _ := store.Consume(ctx, mismatched, "google")
	mr.FastForward(11 * time.Minute)
	okExpired, _ := store.Consume(ctx, expiring, "google")
	okUnknown, _ := store.Consume(ctx, "", "google")

	// Assert
	assert.False(t, okMismatch)
	assert.False(t, okExpired)
	assert.False(t, okUnknown)
}

func TestMemoryStateStore(t *testing.T) {
	// Arrange
	store := auth.NewMemoryStateStore(time.Minute)
	ctx := context.Background()
	state, err := store.Issue(ctx, "azuread")
	require.NoError(t, err)

	// Act
	wrong, _ := store.Consume(ctx, state, "github")
	again, _ := store.Consume(ctx, state, "azuread")
	fresh, _ := store.Issue(ctx, "azuread")
	ok, _ := store.Consume(ctx, fresh, "azuread")

	// Assert
	assert.False(t, wrong)
	assert.False(t, again)
	assert.True(t, ok)
}
