package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rtirumala2025/petsync/internal/models"
	"github.com/rtirumala2025/petsync/internal/server/jwt"
	"github.com/rtirumala2025/petsync/internal/server/storage"
	"github.com/rtirumala2025/petsync/internal/validation"
	"github.com/rtirumala2025/petsync/pkg/api"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens storage.TokenStorage
	jwt    *jwt.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokens storage.TokenStorage, jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
		tokens: tokens,
		jwt:    jwtService,
	}
}

// HandleRegister handles POST /api/v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			writeError(h.logger, w, http.StatusConflict, "username already taken")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	writeJSON(h.logger, w, http.StatusCreated, api.RegisterResponse{
		UserID:  user.ID,
		Message: "registration successful",
	})
}

// HandleLogin handles POST /api/v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Same response as a wrong password so usernames cannot be
			// enumerated.
			writeError(h.logger, w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("failed to get user", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(h.logger, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		h.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	h.issueTokens(w, r, user)
}

// HandleRefresh handles POST /api/v1/auth/refresh. The presented refresh
// token is rotated: consumed and replaced by a new one.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := h.tokens.GetRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			writeError(h.logger, w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.Error("failed to get refresh token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if stored.IsExpired() {
		_ = h.tokens.DeleteRefreshToken(r.Context(), stored.Token)
		writeError(h.logger, w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), stored.UserID)
	if err != nil {
		h.logger.Error("failed to get user for refresh", "user_id", stored.UserID, "error", err)
		writeError(h.logger, w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if err := h.tokens.DeleteRefreshToken(r.Context(), stored.Token); err != nil {
		h.logger.Warn("failed to rotate refresh token", "error", err)
	}

	h.issueTokens(w, r, user)
}

// HandleLogout handles POST /api/v1/auth/logout. Requires auth; revokes
// all of the user's refresh tokens.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.tokens.DeleteUserTokens(r.Context(), userID); err != nil {
		h.logger.Error("failed to revoke tokens", "user_id", userID, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged out", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// issueTokens generates and stores a fresh token pair.
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User) {
	accessToken, expiresIn, err := h.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed to generate access token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	refreshToken, expiresAt, err := h.jwt.GenerateRefreshToken()
	if err != nil {
		h.logger.Error("failed to generate refresh token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	err = h.tokens.SaveRefreshToken(r.Context(), &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("failed to save refresh token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		ExpiresIn:    expiresIn,
	})
}
