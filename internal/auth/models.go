package auth

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User is the authenticated identity held for the duration of a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session wraps the current user plus how the session was established.
// Fallback sessions were authenticated against the static credential table
// while the identity provider was unreachable.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	Fallback  bool      `json:"fallback"`
	ExpiresAt time.Time `json:"expires_at"`
}

var (
	// ErrInvalidCredentials is surfaced to the caller for user notification.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoSession means there is nothing to restore or end.
	ErrNoSession = errors.New("no active session")
)
