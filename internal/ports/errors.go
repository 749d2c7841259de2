package ports

import "errors"

// Shared sentinel errors surfaced across store implementations.
var (
	// ErrSessionNotFound means the token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPayloadNotFound means no cached payload exists for the token.
	ErrPayloadNotFound = errors.New("authentication payload not found")

	// ErrAccountNotFound means the account id or email is unknown.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDomainNotAllowed means the email domain failed the workspace
	// allow-list check. Fatal for the request, never retried.
	ErrDomainNotAllowed = errors.New("email domain not allowed for workspace")
)
