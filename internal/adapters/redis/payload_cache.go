package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/ports"
)

// PayloadCache stores authentication payloads keyed by session token so a
// repeat login call can be answered without re-provisioning. Entries share
// the session TTL; the two stores are written together at login.
type PayloadCache struct {
	client redis.UniversalClient
	prefix string
}

// NewPayloadCache creates a new Redis-based payload cache.
func NewPayloadCache(client redis.UniversalClient) *PayloadCache {
	return &PayloadCache{
		client: client,
		prefix: "authpayload:",
	}
}

var _ ports.PayloadCache = (*PayloadCache)(nil)

// Put stores the payload under the token. With ports.KeepTTL the entry
// is rewritten in place, keeping its remaining expiry; an absent entry is
// left absent so an expired payload cannot come back.
func (c *PayloadCache) Put(ctx context.Context, token string, payload domainauth.AuthResponse, ttl time.Duration) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal auth payload: %w", err)
	}
	if ttl == ports.KeepTTL {
		return c.client.SetXX(ctx, c.prefix+token, data, redis.KeepTTL).Err()
	}
	return c.client.Set(ctx, c.prefix+token, data, ttl).Err()
}

// Get retrieves the cached payload for the token.
func (c *PayloadCache) Get(ctx context.Context, token string) (domainauth.AuthResponse, error) {
	if token == "" {
		return domainauth.AuthResponse{}, ports.ErrPayloadNotFound
	}

	data, err := c.client.Get(ctx, c.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.AuthResponse{}, ports.ErrPayloadNotFound
		}
		return domainauth.AuthResponse{}, fmt.Errorf("redis get payload: %w", err)
	}

	var payload domainauth.AuthResponse
	if unmarshalErr := json.Unmarshal([]byte(data), &payload); unmarshalErr != nil {
		return domainauth.AuthResponse{}, fmt.Errorf("unmarshal auth payload: %w", unmarshalErr)
	}
	return payload, nil
}

// Delete removes the cached payload. Deleting an absent entry is not an error.
func (c *PayloadCache) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+token).Err()
}
