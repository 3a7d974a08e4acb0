// Package api implements the HTTP client for the petsync server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rtirumala2025/petsync/pkg/api"
)

//go:generate moq -out client_mock.go . SyncAPI

// SyncAPI defines the network surface the sync engine depends on.
// Pull and Push are the only calls made while a sync round-trip is in
// flight; Ping backs the connectivity probe.
type SyncAPI interface {
	// Register creates a new user account.
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)

	// Login authenticates and returns a token pair.
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)

	// Refresh exchanges a refresh token for a new token pair.
	// Returns ErrAuth if the refresh token itself is expired or revoked.
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)

	// Pull fetches the server's current state and any standing conflicts.
	Pull(ctx context.Context, accessToken string) (*api.SyncEnvelope, error)

	// Push applies one change on top of the client's assumed base version.
	// A response with a non-empty conflict list is still a success.
	Push(ctx context.Context, accessToken string, req api.PushRequest) (*api.SyncEnvelope, error)

	// Logout revokes all refresh tokens of the authenticated user.
	Logout(ctx context.Context, accessToken string) error

	// Ping checks server reachability without authentication.
	Ping(ctx context.Context) error
}

// requestTimeout bounds every sync round-trip; a request that exceeds it
// is treated as a network failure.
const requestTimeout = 15 * time.Second

// Client is the HTTP implementation of SyncAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ SyncAPI = (*Client)(nil)

// NewClient creates a new API client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login authenticates the user.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh exchanges the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	req := api.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Pull fetches the current server state and standing conflicts.
func (c *Client) Pull(ctx context.Context, accessToken string) (*api.SyncEnvelope, error) {
	var resp api.SyncEnvelope
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/sync", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}
	return &resp, nil
}

// Push applies one queued change.
func (c *Client) Push(ctx context.Context, accessToken string, req api.PushRequest) (*api.SyncEnvelope, error) {
	var resp api.SyncEnvelope
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	return &resp, nil
}

// Logout revokes the session server-side.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Ping checks reachability of the server's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", "", nil, nil)
}

// doRequest performs one HTTP round-trip and maps the outcome onto the
// client error taxonomy.
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failures (dial, timeout, reset) are all
		// connectivity problems from the engine's point of view.
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrAuth, errorMessage(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts the error description from a JSON error body,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
