package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrAuthenticationFailed wraps unexpected failures during authentication.
// The HTTP layer maps it to a 500-equivalent with a generic message.
var ErrAuthenticationFailed = errors.New("failed to authenticate")

// ErrMissingSessionID is returned by logout when the caller supplied no
// client session id.
var ErrMissingSessionID = errors.New("missing client session id")

// UnknownAttributeError reports attribute names not present in the
// tenant's attribute catalog. Validation runs before any account
// mutation, so an UnknownAttributeError guarantees no partial writes.
type UnknownAttributeError struct {
	Names []string
}

func (e *UnknownAttributeError) Error() string {
	names := append([]string(nil), e.Names...)
	sort.Strings(names)
	return "unknown attributes: " + strings.Join(names, ", ")
}

// IsClientError reports whether err should surface as a 400-equivalent.
func IsClientError(err error) bool {
	var unknownAttr *UnknownAttributeError
	return errors.As(err, &unknownAttr) || errors.Is(err, ErrMissingSessionID)
}
