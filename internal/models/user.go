package models

import "time"

// User represents a registered account on the server.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
	ID           string    `json:"id"` // UUID
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
}

// RefreshToken is a long-lived opaque token exchanged for new access
// tokens. Stored server-side so it can be revoked on logout.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
}

// IsExpired reports whether the refresh token is past its expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
