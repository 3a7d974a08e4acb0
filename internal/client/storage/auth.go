package storage

import (
	"context"
	"time"
)

// AuthData is the persisted session for the logged-in user.
type AuthData struct {
	ExpiresAt    time.Time `json:"expires_at"` // access token expiry
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// AuthStorage persists the current session between CLI invocations.
type AuthStorage interface {
	// SaveAuth stores session data, replacing any previous session.
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns the stored session.
	// Returns ErrAuthNotFound if nobody is logged in.
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session.
	DeleteAuth(ctx context.Context) error
}
