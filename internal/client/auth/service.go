// Package auth manages the client session: registration, login, logout
// and token refresh for the sync engine.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/internal/validation"
	"github.com/rtirumala2025/petsync/pkg/api"
)

// Service handles the account lifecycle against the server and keeps the
// persisted session in step.
type Service struct {
	apiClient apiclient.SyncAPI
	authStore storage.AuthStorage
	logger    *slog.Logger
}

// NewService creates a new auth service.
func NewService(apiClient apiclient.SyncAPI, authStore storage.AuthStorage, logger *slog.Logger) *Service {
	return &Service{
		apiClient: apiClient,
		authStore: authStore,
		logger:    logger,
	}
}

// Register creates a new account. The user still has to log in
// afterwards; registration does not issue tokens.
func (s *Service) Register(ctx context.Context, username, password string) (*api.RegisterResponse, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, api.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return resp, nil
}

// Login authenticates and persists the session.
func (s *Service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	auth := &storage.AuthData{
		UserID:       resp.UserID,
		Username:     username,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	if err := s.authStore.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return auth, nil
}

// Logout revokes the session server-side (best effort) and always
// removes the local session.
func (s *Service) Logout(ctx context.Context) error {
	auth, err := s.authStore.GetAuth(ctx)
	if err == nil {
		if logoutErr := s.apiClient.Logout(ctx, auth.AccessToken); logoutErr != nil {
			s.logger.Warn("failed to logout on server", "error", logoutErr)
		}
	} else {
		s.logger.Debug("no stored session during logout", "error", err)
	}

	if err := s.authStore.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

// CurrentSession returns the stored session.
// Returns storage.ErrAuthNotFound if nobody is logged in.
func (s *Service) CurrentSession(ctx context.Context) (*storage.AuthData, error) {
	return s.authStore.GetAuth(ctx)
}
