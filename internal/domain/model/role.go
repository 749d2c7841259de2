package model

import "time"

// Role is a workspace role. Names are unique within a workspace; guests
// are assigned the configured default role at provisioning time.
type Role struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
