package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristasoft/guestauth/internal/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore_CreateAndLookup(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	token, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)

	// Distinct tokens per create.
	other, err := store.Create(ctx, "account-2", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	// Key carries the TTL.
	assert.Greater(t, mr.TTL("session:"+token), time.Duration(0))
}

func TestSessionStore_CreateValidatesInput(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Create(ctx, "", time.Hour)
	require.Error(t, err)

	_, err = store.Create(ctx, "account-1", 0)
	require.Error(t, err)
}

func TestSessionStore_LookupExpired(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	token, err := store.Create(ctx, "account-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_LookupMissing(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)

	_, err := store.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	token, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	// Second delete and empty-token delete are no-ops.
	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStoreWithPrefix(client, "guest:")
	ctx := context.Background()

	token, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)

	assert.True(t, mr.Exists("guest:"+token))
	assert.False(t, mr.Exists("session:"+token))
}
