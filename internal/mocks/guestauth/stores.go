// Package guestauth contains simple hand-written test doubles for the
// guest authentication ports. These are lightweight and suitable for unit
// tests without codegen.
package guestauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.PayloadCache     = (*MemoryPayloadCache)(nil)
	_ ports.AccountDirectory = (*MemoryAccountDirectory)(nil)
	_ ports.RoleStore        = (*MemoryRoleStore)(nil)
	_ ports.DomainAllowlist  = (*StaticDomainAllowlist)(nil)
	_ ports.AttributeCatalog = (*StaticAttributeCatalog)(nil)
)

// MemorySessionStore is an in-memory ports.SessionStore with call
// counters for asserting store interaction.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	seq      int

	CreateCalls int
	LookupCalls int
	DeleteCalls int

	// CreateErr / LookupErr / DeleteErr force the next call to fail.
	CreateErr error
	LookupErr error
	DeleteErr error
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]string)}
}

func (s *MemorySessionStore) Create(_ context.Context, accountID string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.seq++
	token := fmt.Sprintf("session-token-%d", s.seq)
	s.sessions[token] = accountID
	return token, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LookupCalls++
	if s.LookupErr != nil {
		return "", s.LookupErr
	}
	accountID, ok := s.sessions[token]
	if !ok {
		return "", ports.ErrSessionNotFound
	}
	return accountID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.sessions, token)
	return nil
}

// Bind seeds a token -> account binding.
func (s *MemorySessionStore) Bind(token, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = accountID
}

// Has reports whether the token is currently bound.
func (s *MemorySessionStore) Has(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

// MemoryPayloadCache is an in-memory ports.PayloadCache.
type MemoryPayloadCache struct {
	mu       sync.Mutex
	payloads map[string]domainauth.AuthResponse

	PutCalls    int
	GetCalls    int
	DeleteCalls int

	// LastPutTTL records the ttl of the most recent Put.
	LastPutTTL time.Duration

	PutErr error
	GetErr error
}

// NewMemoryPayloadCache creates an empty in-memory payload cache.
func NewMemoryPayloadCache() *MemoryPayloadCache {
	return &MemoryPayloadCache{payloads: make(map[string]domainauth.AuthResponse)}
}

func (c *MemoryPayloadCache) Put(_ context.Context, token string, payload domainauth.AuthResponse, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PutCalls++
	c.LastPutTTL = ttl
	if c.PutErr != nil {
		return c.PutErr
	}
	if ttl == ports.KeepTTL {
		// A keep-expiry rewrite only lands on an existing entry.
		if _, ok := c.payloads[token]; !ok {
			return nil
		}
	}
	c.payloads[token] = payload
	return nil
}

func (c *MemoryPayloadCache) Get(_ context.Context, token string) (domainauth.AuthResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	if c.GetErr != nil {
		return domainauth.AuthResponse{}, c.GetErr
	}
	payload, ok := c.payloads[token]
	if !ok {
		return domainauth.AuthResponse{}, ports.ErrPayloadNotFound
	}
	return payload, nil
}

func (c *MemoryPayloadCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeleteCalls++
	delete(c.payloads, token)
	return nil
}

// Stored returns the cached payload without counting the read.
func (c *MemoryPayloadCache) Stored(token string) (domainauth.AuthResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.payloads[token]
	return payload, ok
}
