package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/client/storage"
)

// Session adapts the persisted session to the sync engine's token
// source. Refresh serializes on a mutex so two collaborators rotating
// the same refresh token cannot race.
type Session struct {
	apiClient apiclient.SyncAPI
	authStore storage.AuthStorage

	mu sync.Mutex
}

// NewSession creates a token source backed by the stored session.
func NewSession(apiClient apiclient.SyncAPI, authStore storage.AuthStorage) *Session {
	return &Session{
		apiClient: apiClient,
		authStore: authStore,
	}
}

// AccessToken returns the stored access token. A token past its expiry
// is refreshed first instead of bouncing off the server.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("no active session: %w", err)
	}

	if time.Now().After(auth.ExpiresAt) {
		auth, err = s.refreshLocked(ctx, auth)
		if err != nil {
			return "", err
		}
	}

	return auth.AccessToken, nil
}

// Refresh rotates the token pair using the stored refresh token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return fmt.Errorf("no active session: %w", err)
	}

	_, err = s.refreshLocked(ctx, auth)
	return err
}

func (s *Session) refreshLocked(ctx context.Context, auth *storage.AuthData) (*storage.AuthData, error) {
	resp, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	fresh := &storage.AuthData{
		UserID:       resp.UserID,
		Username:     auth.Username,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	if err := s.authStore.SaveAuth(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}

	return fresh, nil
}
