package ports

// Package ports defines interfaces (hexagonal ports) for the guest
// authentication core. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/domain/model"
)

// SessionStore persists the token -> account binding. Create and Delete
// must be atomic per token; TTL enforcement is owned by the store.
type SessionStore interface {
	// Create binds a fresh opaque token to the account and returns it.
	Create(ctx context.Context, accountID string, ttl time.Duration) (string, error)

	// Lookup resolves a token to the bound account id.
	// Returns ErrSessionNotFound when the token is unknown or expired.
	Lookup(ctx context.Context, token string) (string, error)

	// Delete removes the token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

// KeepTTL instructs PayloadCache.Put to rewrite an existing entry while
// retaining its remaining expiry. Rewriting an absent entry with KeepTTL
// is a no-op, so an expired payload can never be resurrected.
const KeepTTL time.Duration = -1

// PayloadCache stores the authentication payload issued at login, keyed by
// session token, so repeat login calls can be answered without
// re-provisioning. Entries expire with the session; a rewrite with
// KeepTTL must not extend that expiry.
type PayloadCache interface {
	Put(ctx context.Context, token string, payload domainauth.AuthResponse, ttl time.Duration) error

	// Get returns the cached payload, or ErrPayloadNotFound.
	Get(ctx context.Context, token string) (domainauth.AuthResponse, error)

	Delete(ctx context.Context, token string) error
}

// AccountDirectory is the workspace account store.
type AccountDirectory interface {
	// GetByID fetches an account by id, or ErrAccountNotFound.
	GetByID(ctx context.Context, id string) (*model.Account, error)

	// LookupByEmail fetches an account by normalized email, or ErrAccountNotFound.
	LookupByEmail(ctx context.Context, email string) (*model.Account, error)

	// Create provisions a new account. A concurrent create for the same
	// email resolves to the existing account rather than failing.
	Create(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error)

	// UpdateAttribute overwrites a single attribute on the account.
	UpdateAttribute(ctx context.Context, accountID, name, value string) error
}

// RoleStore provisions workspace roles. GetOrCreate is idempotent: a
// create racing with another create of the same name resolves to the
// winner's role id.
type RoleStore interface {
	GetOrCreate(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
}

// DomainAllowlist validates and registers guest email domains against the
// workspace's supported domain set.
type DomainAllowlist interface {
	// EnsureAllowed checks the domain of email against the allow-list and
	// registers it when absent. Returns ErrDomainNotAllowed when the
	// workspace rejects the domain.
	EnsureAllowed(ctx context.Context, email string) error
}

// AttributeCatalog exposes the tenant's configured attribute names for
// upsert validation.
type AttributeCatalog interface {
	// Known returns the set of attribute names defined for the tenant.
	Known(ctx context.Context) (map[string]struct{}, error)
}
