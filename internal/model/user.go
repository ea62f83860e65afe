package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterParams contains the fields submitted on signup.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams contains the fields submitted on login.
type LoginParams struct {
	Email    string
	Password string
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash. An empty hash is
	// compared against a fixed dummy so that unknown users cost the same.
	Compare(hash, password string) error
}
