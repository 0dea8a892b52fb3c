package models

import "time"

// User roles. Assigned once at signup and read-only afterwards.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole checks if the provided role string is a known role.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents an account in the system.
type User struct {
	UID          string    `json:"uid" db:"uid"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         string    `json:"role" db:"role"`
	CreationTime time.Time `json:"creation_time" db:"creation_time"`
}
