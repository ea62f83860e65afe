package model

import (
	"context"
	"time"
)

// LoginStatusSuccess marks a successful login attempt.
const LoginStatusSuccess = 1

// LoginEventStore appends login attempts.
type LoginEventStore interface {
	Create(ctx context.Context, event LoginEvent) error
}

// LoginEvent is an append-only record of a login attempt.
type LoginEvent struct {
	ID        int64
	Email     string
	Status    int
	CreatedAt time.Time
}
