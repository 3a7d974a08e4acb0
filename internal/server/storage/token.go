package storage

import (
	"context"

	"github.com/rtirumala2025/petsync/internal/models"
)

// TokenStorage defines the interface for refresh token persistence.
// Refresh tokens are opaque, stored server-side and rotated on use.
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves a refresh token.
	// Returns ErrTokenNotFound if it doesn't exist.
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteRefreshToken removes a single refresh token.
	// Returns ErrTokenNotFound if it doesn't exist.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteUserTokens removes all refresh tokens of a user.
	DeleteUserTokens(ctx context.Context, userID string) error

	// DeleteExpiredTokens removes all expired refresh tokens.
	// Returns the number of tokens removed.
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}
