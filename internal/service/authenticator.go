package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kristasoft/guestauth/internal/ports"
)

// Route classifies the request path for authentication purposes.
type Route int

const (
	// RouteOther is any path without special authentication handling.
	RouteOther Route = iota
	// RouteLogin is the interactive login path; a resolution miss there
	// triggers guest provisioning instead of failing.
	RouteLogin
	// RouteAttributeUpsert authenticates as the platform's own account,
	// bypassing guest-session resolution entirely.
	RouteAttributeUpsert
)

// AuthenticatorOptions groups dependencies for Authenticator.
type AuthenticatorOptions struct {
	Sessions  ports.SessionStore
	Directory ports.AccountDirectory

	// PlatformAccountID is the platform's own account.
	PlatformAccountID string
	// AuthorizedAccountID is the account the host authorized this
	// deployment to act as; it answers distinguished routes.
	AuthorizedAccountID string

	Logger *slog.Logger
}

// Authenticator resolves an inbound request to an account id: token
// extraction happens in the HTTP layer, session validation and account
// verification happen here.
type Authenticator struct {
	sessions            ports.SessionStore
	directory           ports.AccountDirectory
	platformAccountID   string
	authorizedAccountID string
	logger              *slog.Logger
}

// NewAuthenticator constructs a new Authenticator.
func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	return &Authenticator{
		sessions:            opts.Sessions,
		directory:           opts.Directory,
		platformAccountID:   opts.PlatformAccountID,
		authorizedAccountID: opts.AuthorizedAccountID,
		logger:              opts.Logger,
	}
}

func (a *Authenticator) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// ResolveInput carries the pre-extracted request facts.
type ResolveInput struct {
	Route Route
	// Token is the candidate session token from cookie, header, or query
	// parameter; empty when none was presented.
	Token string
}

// ResolveResult is the outcome of request authentication.
type ResolveResult struct {
	// AccountID is the authenticated account; empty when Authenticated is false.
	AccountID string
	// Authenticated is false when no identity could be resolved and the
	// path does not trigger provisioning.
	Authenticated bool
}

// Resolve authenticates a request. A missing or dangling session is not
// an error: on the login route it resolves to the authorized platform
// account (the login handler then provisions a guest), elsewhere it
// resolves to unauthenticated.
func (a *Authenticator) Resolve(ctx context.Context, input ResolveInput) (ResolveResult, error) {
	if input.Route == RouteAttributeUpsert {
		// Updating person attributes requires the platform's own account.
		if a.authorizedAccountID == "" {
			return ResolveResult{}, fmt.Errorf("%w: no authorized platform account configured", ErrAuthenticationFailed)
		}
		return ResolveResult{AccountID: a.authorizedAccountID, Authenticated: true}, nil
	}

	if input.Token != "" {
		if accountID, ok := a.resolveSession(ctx, input.Token); ok {
			return ResolveResult{AccountID: accountID, Authenticated: true}, nil
		}
	}

	if input.Route == RouteLogin {
		if a.authorizedAccountID == "" {
			return ResolveResult{}, fmt.Errorf("%w: no authorized platform account configured", ErrAuthenticationFailed)
		}
		a.log().InfoContext(ctx, "login request without usable session",
			slog.String("authorized_account_id", a.authorizedAccountID))
		return ResolveResult{AccountID: a.authorizedAccountID, Authenticated: true}, nil
	}

	return ResolveResult{}, nil
}

// resolveSession validates the token against the session store and checks
// the referenced account still exists. Any miss or store failure falls
// through to provisioning rather than failing the request.
func (a *Authenticator) resolveSession(ctx context.Context, token string) (string, bool) {
	accountID, err := a.sessions.Lookup(ctx, token)
	if err != nil {
		if !errors.Is(err, ports.ErrSessionNotFound) {
			a.log().ErrorContext(ctx, "session lookup failed", slog.Any("error", err))
		}
		return "", false
	}

	if _, err := a.directory.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			// Dangling session: the account was deleted out from under it.
			a.log().ErrorContext(ctx, "no account for authenticated session",
				slog.String("account_id", accountID))
		} else {
			a.log().ErrorContext(ctx, "account verification failed", slog.Any("error", err))
		}
		return "", false
	}

	a.log().InfoContext(ctx, "resolved authenticated account", slog.String("account_id", accountID))
	return accountID, true
}
