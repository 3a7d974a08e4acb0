package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtirumala2025/petsync/internal/merge"
	"github.com/rtirumala2025/petsync/internal/server/jwt"
	"github.com/rtirumala2025/petsync/internal/server/storage/sqlite"
	"github.com/rtirumala2025/petsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:", merge.FieldLevel)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jwtService := jwt.NewService("test-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthHandler(testLogger(), store, store, jwtService), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, h *AuthHandler, username, password string) api.TokenResponse {
	t.Helper()

	rec := postJSON(t, h.HandleRegister, "/api/v1/auth/register", api.RegisterRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.HandleLogin, "/api/v1/auth/login", api.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens api.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	return tokens
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	tokens := registerAndLogin(t, h, "alice", "correct-horse-battery")
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEmpty(t, tokens.UserID)
	assert.Equal(t, int64(900), tokens.ExpiresIn)
}

func TestAuthHandler_RegisterRejectsWeakInput(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.HandleRegister, "/api/v1/auth/register", api.RegisterRequest{
		Username: "ab", // too short
		Password: "correct-horse-battery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.HandleRegister, "/api/v1/auth/register", api.RegisterRequest{
		Username: "alice",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RegisterDuplicateUsername(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	registerAndLogin(t, h, "alice", "correct-horse-battery")

	rec := postJSON(t, h.HandleRegister, "/api/v1/auth/register", api.RegisterRequest{
		Username: "alice",
		Password: "another-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	registerAndLogin(t, h, "alice", "correct-horse-battery")

	rec := postJSON(t, h.HandleLogin, "/api/v1/auth/login", api.LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginUnknownUser(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.HandleLogin, "/api/v1/auth/login", api.LoginRequest{
		Username: "ghost",
		Password: "whatever-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_RefreshRotatesToken(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	tokens := registerAndLogin(t, h, "alice", "correct-horse-battery")

	rec := postJSON(t, h.HandleRefresh, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh api.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// The old refresh token is consumed.
	rec = postJSON(t, h.HandleRefresh, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_RefreshUnknownToken(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.HandleRefresh, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: "no-such-token",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LogoutRevokesTokens(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	tokens := registerAndLogin(t, h, "alice", "correct-horse-battery")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, tokens.UserID))
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec2 := postJSON(t, h.HandleRefresh, "/api/v1/auth/refresh", api.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}
