package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid user input")
)

type Repo interface {
	// Create inserts a new user; an existing email yields ErrDuplicate.
	Create(ctx context.Context, user User) (User, error)
	// Upsert inserts or refreshes a user keyed by email and returns the stored row.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
