package model

import (
	"errors"
	"strings"
	"time"
)

// Account is a workspace account record. Guest accounts are created once
// per synthesized identity and never deleted by this service.
type Account struct {
	ID          string            `json:"id" db:"id"`
	Email       string            `json:"email" db:"email"`
	DisplayName string            `json:"display_name" db:"display_name"`
	AvatarURL   *string           `json:"avatar_url,omitempty" db:"avatar_url"`
	PersonID    string            `json:"person_id" db:"person_id"`
	InboxID     string            `json:"inbox_id" db:"inbox_id"`
	Attributes  map[string]string `json:"attributes" db:"attributes"`
	RoleIDs     []string          `json:"role_ids" db:"-"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty" db:"updated_at"`
}

// HasRole reports whether the account carries the given role id.
func (a *Account) HasRole(roleID string) bool {
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// CreateAccountRequest carries the fields needed to provision an account.
type CreateAccountRequest struct {
	Email       string
	DisplayName string
	RoleIDs     []string
	Attributes  map[string]string
}

// Normalize trims and lower-cases the email address.
func (r *CreateAccountRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

// Validate checks required fields.
func (r *CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required and cannot be empty")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email must contain a domain")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("display name is required and cannot be empty")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns the part of the address before the '@', or the
// whole string when no '@' is present.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// EmailDomain returns the part of the address after the '@', or "" when no
// '@' is present.
func EmailDomain(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return strings.ToLower(email[i+1:])
	}
	return ""
}
