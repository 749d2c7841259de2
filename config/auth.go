package config

import "strings"

// Default guest identity values. These mirror the workspace defaults and are
// only used when the corresponding environment variables are unset.
const (
	DefaultGuestRole     = "Krista Guest User"
	DefaultAdminRole     = "Workspace Admin"
	DefaultEmailPrefix   = "guest"
	DefaultSessionTTLMin = 24 * 60 // one day
)

// GuestConfig contains guest authentication configuration.
type GuestConfig struct {
	// DefaultRole is the role assigned to newly provisioned guest accounts.
	// The role is created lazily if it does not yet exist in the workspace.
	DefaultRole string `env:"DEFAULT_ROLE" envDefault:"Krista Guest User"`

	// AdminRole is the workspace administrator role name. Accounts holding
	// it are reported as isAdmin in the authentication payload.
	AdminRole string `env:"ADMIN_ROLE" envDefault:"Workspace Admin"`

	// EmailPrefix is the local-part prefix for synthesized guest emails
	// (guest_<uuid>@<domain>).
	EmailPrefix string `env:"EMAIL_PREFIX" envDefault:"guest"`

	// PlatformDomain is the email domain used when the login originated
	// from the platform's own channel (the "source" header is present).
	PlatformDomain string `env:"PLATFORM_DOMAIN" envDefault:"omni.kristasoft.com"`

	// DefaultDomain is the email domain used for external-channel logins.
	DefaultDomain string `env:"DEFAULT_DOMAIN" envDefault:"kristasoft.com"`

	// SessionTTLMinutes bounds both the server-side session and the
	// session cookie Max-Age.
	SessionTTLMinutes int `env:"SESSION_TTL_MINUTES" envDefault:"1440"`

	// PlatformAccountID is the platform's own account identifier, injected
	// by the hosting environment. Used for the distinguished-route bypass
	// and for detecting re-entrant login calls.
	PlatformAccountID string `env:"PLATFORM_ACCOUNT_ID"`

	// AuthorizedAccountID is the account the hosting environment
	// authorized this deployment to act as.
	AuthorizedAccountID string `env:"AUTHORIZED_ACCOUNT_ID"`

	// RestrictedDomains switches the workspace domain allow-list into
	// validate-only mode: guest email domains not already supported by the
	// workspace are rejected instead of registered.
	RestrictedDomains bool `env:"RESTRICTED_DOMAINS" envDefault:"false"`

	// ReentrantReplay controls whether a login call carrying a still-live
	// guest session replays the cached payload instead of provisioning a
	// fresh guest.
	ReentrantReplay bool `env:"REENTRANT_REPLAY" envDefault:"true"`
}

// Sanitize applies guardrails to guest configuration values.
func (g *GuestConfig) Sanitize() {
	if strings.TrimSpace(g.DefaultRole) == "" {
		g.DefaultRole = DefaultGuestRole
	}
	if strings.TrimSpace(g.AdminRole) == "" {
		g.AdminRole = DefaultAdminRole
	}
	if strings.TrimSpace(g.EmailPrefix) == "" {
		g.EmailPrefix = DefaultEmailPrefix
	}
	if g.SessionTTLMinutes <= 0 {
		g.SessionTTLMinutes = DefaultSessionTTLMin
	}
	g.PlatformDomain = strings.ToLower(strings.TrimSpace(g.PlatformDomain))
	g.DefaultDomain = strings.ToLower(strings.TrimSpace(g.DefaultDomain))
}
