package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/client/storage"
	"github.com/rtirumala2025/petsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// memAuthStore is an in-memory AuthStorage for tests.
type memAuthStore struct {
	mu   sync.Mutex
	auth *storage.AuthData
}

func (m *memAuthStore) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *auth
	m.auth = &copied
	return nil
}

func (m *memAuthStore) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		return nil, storage.ErrAuthNotFound
	}
	copied := *m.auth
	return &copied, nil
}

func (m *memAuthStore) DeleteAuth(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = nil
	return nil
}

func TestService_LoginPersistsSession(t *testing.T) {
	store := &memAuthStore{}
	mock := &apiclient.SyncAPIMock{
		LoginFunc: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			assert.Equal(t, "alice", req.Username)
			return &api.TokenResponse{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				UserID:       "user-1",
				ExpiresIn:    900,
			}, nil
		},
	}

	svc := NewService(mock, store, testLogger())
	auth, err := svc.Login(context.Background(), "alice", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, "user-1", auth.UserID)

	stored, err := store.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
	assert.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestService_LoginValidatesInput(t *testing.T) {
	svc := NewService(&apiclient.SyncAPIMock{}, &memAuthStore{}, testLogger())

	_, err := svc.Login(context.Background(), "ab", "correct-horse-battery")
	require.Error(t, err)

	_, err = svc.Login(context.Background(), "alice", "short")
	require.Error(t, err)
}

func TestService_LogoutAlwaysClearsLocalSession(t *testing.T) {
	store := &memAuthStore{}
	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		UserID:      "user-1",
		AccessToken: "access-1",
	}))

	mock := &apiclient.SyncAPIMock{
		LogoutFunc: func(ctx context.Context, accessToken string) error {
			return errors.New("server unreachable")
		},
	}

	svc := NewService(mock, store, testLogger())
	require.NoError(t, svc.Logout(context.Background()))

	_, err := store.GetAuth(context.Background())
	require.ErrorIs(t, err, storage.ErrAuthNotFound)
	assert.Len(t, mock.LogoutCalls(), 1)
}

func TestSession_AccessTokenReturnsStored(t *testing.T) {
	store := &memAuthStore{}
	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}))

	session := NewSession(&apiclient.SyncAPIMock{}, store)
	token, err := session.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)
}

func TestSession_AccessTokenRefreshesExpired(t *testing.T) {
	store := &memAuthStore{}
	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		UserID:       "user-1",
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	mock := &apiclient.SyncAPIMock{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
			assert.Equal(t, "refresh-1", refreshToken)
			return &api.TokenResponse{
				AccessToken:  "fresh",
				RefreshToken: "refresh-2",
				UserID:       "user-1",
				ExpiresIn:    900,
			}, nil
		},
	}

	session := NewSession(mock, store)
	token, err := session.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	// The rotated refresh token is persisted.
	stored, err := store.GetAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestSession_RefreshFailurePropagates(t *testing.T) {
	store := &memAuthStore{}
	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Minute),
	}))

	mock := &apiclient.SyncAPIMock{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
			return nil, apiclient.ErrAuth
		},
	}

	session := NewSession(mock, store)
	err := session.Refresh(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuth)
}

func TestSession_NoSession(t *testing.T) {
	session := NewSession(&apiclient.SyncAPIMock{}, &memAuthStore{})

	_, err := session.AccessToken(context.Background())
	require.ErrorIs(t, err, storage.ErrAuthNotFound)
}
