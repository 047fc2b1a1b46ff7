package user

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// Store defines the interface for user persistence.
type Store interface {
	// Create persists a new user.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
