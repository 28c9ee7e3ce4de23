package model

import "time"

// RoleAdmin is the only role the back office knows.  Exactly one user
// carries it.
const RoleAdmin = "ADMIN"

// User is a row of `users`.  In practice the table holds the single admin
// identity that signs in to the back office.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string // bcrypt
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is a row of `refresh_tokens`.  Only the SHA-256 of the raw
// token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
