// Package redis provides Redis-based adapters for the guest
// authentication stores.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kristasoft/guestauth/internal/ports"
)

// SessionStore is a Redis-based session store. Keys expire via Redis TTL;
// no reaping is done by this service.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
	}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Create mints a fresh opaque token bound to the account id.
func (s *SessionStore) Create(ctx context.Context, accountID string, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", errors.New("account ID cannot be empty")
	}
	if ttl <= 0 {
		return "", errors.New("session TTL must be positive")
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, s.prefix+token, accountID, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to the bound account id.
func (s *SessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ports.ErrSessionNotFound
	}

	accountID, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrSessionNotFound
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}
	return accountID, nil
}

// Delete removes the token. Deleting an absent token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+token).Err()
}
