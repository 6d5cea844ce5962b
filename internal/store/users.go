package store

import (
	"context"

	"pronto/backend/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	// GetByEmail returns ErrNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}
