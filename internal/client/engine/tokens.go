package engine

import "context"

//go:generate moq -out tokens_mock.go . TokenSource

// TokenSource supplies access tokens for sync round-trips. When the
// server rejects credentials the engine calls Refresh and retries the
// operation exactly once before escalating.
type TokenSource interface {
	// AccessToken returns a token believed to be valid.
	AccessToken(ctx context.Context) (string, error)

	// Refresh obtains a new token pair using the stored refresh token.
	Refresh(ctx context.Context) error
}
