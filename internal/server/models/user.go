// Package models defines the persistent entities. They are plain data
// structs; all persistence behavior lives in the repositories.
package models

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsAdmin reports whether the role grants unrestricted file access.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is an account identified by a unique email. PasswordDigest is a
// bcrypt hash, never the plain password.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"-"`
}
