package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/pkg/api"
)

func TestClient_Pull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/sync", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		resp := api.SyncEnvelope{
			State: api.SyncState{
				Snapshot:     json.RawMessage(`{"happiness":80}`),
				Version:      5,
				LastDeviceID: "device-a",
			},
			Conflicts: []api.Conflict{},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	envelope, err := client.Pull(context.Background(), "test-token")
	require.NoError(t, err)

	assert.Equal(t, int64(5), envelope.State.Version)
	assert.JSONEq(t, `{"happiness":80}`, string(envelope.State.Snapshot))
	assert.Empty(t, envelope.Conflicts)
}

func TestClient_Push(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync", r.URL.Path)

		var req api.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5), req.Version)
		assert.Equal(t, "device-a", req.DeviceID)

		resp := api.SyncEnvelope{
			State: api.SyncState{
				Snapshot: req.Snapshot,
				Version:  6,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	envelope, err := client.Push(context.Background(), "test-token", api.PushRequest{
		Snapshot:     json.RawMessage(`{"happiness":80}`),
		LastModified: time.Now(),
		DeviceID:     "device-a",
		Version:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), envelope.State.Version)
}

func TestClient_Push_ConflictsAreNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := api.SyncEnvelope{
			State: api.SyncState{Snapshot: json.RawMessage(`{"coins":55}`), Version: 8},
			Conflicts: []api.Conflict{
				{Field: "coins", Resolution: api.ResolutionServerWins},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	envelope, err := client.Push(context.Background(), "t", api.PushRequest{Version: 6})
	require.NoError(t, err)
	require.Len(t, envelope.Conflicts, 1)
	assert.Equal(t, "coins", envelope.Conflicts[0].Field)
}

func TestClient_NetworkError(t *testing.T) {
	// Closed server: every request fails at the transport level.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)

	_, err := client.Pull(context.Background(), "test-token")
	assert.ErrorIs(t, err, ErrNetwork)

	err = client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "token expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Pull(context.Background(), "stale-token")

	require.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "token expired")
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "boom"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Push(context.Background(), "t", api.PushRequest{})
	require.Error(t, err)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
	assert.Equal(t, "boom", serverErr.Message)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		resp := api.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			UserID:       "user-1",
			ExpiresIn:    900,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "secretpass"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "user-1", resp.UserID)
}

func TestClient_Refresh_ExpiredTokenIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "refresh token expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrAuth)
}
