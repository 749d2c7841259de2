package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrRoleNameExists is returned when a role create collides on name.
	// Callers resolve it by re-reading the existing role.
	ErrRoleNameExists = errors.New("role name already exists")

	// ErrAccountEmailExists is returned when an account create collides on
	// email. Callers resolve it by re-reading the existing account.
	ErrAccountEmailExists = errors.New("account email already exists")
)
