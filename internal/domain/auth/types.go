// Package auth contains domain-level types for guest authentication.
// It is pure and free of framework/adapter concerns.
package auth

import "time"

// Session binds an opaque session token to an account. The token is the
// only piece of state a client carries; everything else is resolved
// server-side on each request.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Extras carries response metadata that is not part of the account
// identity. The NewSession flag is an at-most-once freshness signal: it is
// cleared the first time a cached payload is re-read.
type Extras struct {
	CreationTime string `json:"creationTime,omitempty"`
	NewSession   bool   `json:"newSession"`
}

// AuthResponse is the authentication payload returned from /login and
// cached per session token. Field names form the public JSON contract
// consumed by the chatbot client.
type AuthResponse struct {
	ClientSessionID string            `json:"clientSessionId"`
	PersonName      string            `json:"personName"`
	AvatarURL       string            `json:"avatarUrl,omitempty"`
	AccountID       string            `json:"accountId"`
	HostAccountID   string            `json:"hostAccountId"`
	PersonID        string            `json:"personId"`
	Roles           []string          `json:"roles"`
	InboxID         string            `json:"inboxId"`
	IsAdmin         bool              `json:"isAdmin"`
	IsServiceCall   bool              `json:"isServiceCall"`
	Attributes      map[string]string `json:"attributes"`
	Extras          Extras            `json:"extras"`
}

// TimestampFormat is the GMT timestamp layout used for creationTime and
// the last-login account attribute.
const TimestampFormat = "2006-01-02T15:04:05 -0700"

// FormatTimestamp formats t in the payload timestamp layout, normalized to GMT.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
