// Package auth implements the identity module: user registration,
// login, token refresh, JWT validation middleware and role guards.
package auth

import "time"

// Roles assignable to users. New registrations always receive RoleUser;
// RoleAdmin accounts are provisioned out of band (seed migration or
// manual update).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account as stored in the users table.
type User struct {
	ID             int       `json:"id"`
	UserName       string    `json:"userName"`
	HashedPassword string    `json:"-"` // never serialized
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
