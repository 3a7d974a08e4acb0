// Package storage defines the server persistence interfaces implemented
// by the sqlite backend.
package storage

import (
	"context"
	"time"

	"github.com/rtirumala2025/petsync/internal/models"
)

// UserStorage defines the interface for user account persistence.
type UserStorage interface {
	// CreateUser creates a new user.
	// Returns ErrUserAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateLastLogin updates the last login timestamp.
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}
