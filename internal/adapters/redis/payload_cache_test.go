package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/ports"
)

func samplePayload(token string) domainauth.AuthResponse {
	return domainauth.AuthResponse{
		ClientSessionID: token,
		PersonName:      "guest_1",
		AccountID:       "account-1",
		HostAccountID:   "platform-account",
		PersonID:        "person-1",
		Roles:           []string{"role-1"},
		InboxID:         "inbox-1",
		Attributes:      map[string]string{"email": "guest_1@kristasoft.com"},
		Extras: domainauth.Extras{
			CreationTime: "2025-03-14T09:26:53 +0000",
			NewSession:   true,
		},
	}
}

func TestPayloadCache_RoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	want := samplePayload("token-1")
	require.NoError(t, cache.Put(ctx, "token-1", want, time.Hour))

	got, err := cache.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPayloadCache_OverwriteClearsNewSession(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	payload := samplePayload("token-1")
	require.NoError(t, cache.Put(ctx, "token-1", payload, time.Hour))

	payload.Extras.NewSession = false
	require.NoError(t, cache.Put(ctx, "token-1", payload, time.Hour))

	got, err := cache.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, got.Extras.NewSession)
}

func TestPayloadCache_KeepTTLPreservesExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	payload := samplePayload("token-1")
	require.NoError(t, cache.Put(ctx, "token-1", payload, 10*time.Minute))
	mr.FastForward(4 * time.Minute)

	payload.Extras.NewSession = false
	require.NoError(t, cache.Put(ctx, "token-1", payload, ports.KeepTTL))

	// The rewrite keeps the remaining expiry instead of granting a fresh one.
	assert.Equal(t, 6*time.Minute, mr.TTL("authpayload:token-1"))

	got, err := cache.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, got.Extras.NewSession)
}

func TestPayloadCache_KeepTTLSkipsAbsentEntry(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "token-1", samplePayload("token-1"), ports.KeepTTL))

	_, err := cache.Get(ctx, "token-1")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)
}

func TestPayloadCache_MissAndExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	_, err := cache.Get(ctx, "absent")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)

	require.NoError(t, cache.Put(ctx, "token-1", samplePayload("token-1"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err = cache.Get(ctx, "token-1")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)
}

func TestPayloadCache_DeleteIsIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewPayloadCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "token-1", samplePayload("token-1"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "token-1"))

	_, err := cache.Get(ctx, "token-1")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)

	require.NoError(t, cache.Delete(ctx, "token-1"))
}
