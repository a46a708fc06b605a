package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "stridestreak/internal/middleware"
	"stridestreak/internal/models"
	"stridestreak/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	tokens   *mw.AuthMiddleware
	logger   *zap.Logger
}

func NewAuthHandler(accounts *services.AccountService, tokens *mw.AuthMiddleware, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username                *string                         `json:"username"`
	Email                   *string                         `json:"email"`
	Password                *string                         `json:"password"`
	NotificationPreferences *models.NotificationPreferences `json:"notification_preferences"`
}

// Register creates an account and signs the user in.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username and password are required")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "user not found")
		return
	}
	h.respondWithToken(w, http.StatusCreated, "User registered successfully", user)
}

// Login exchanges credentials for an access token.
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decode(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "user not found")
		return
	}
	h.respondWithToken(w, http.StatusOK, "Login successful", user)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Profile(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(user))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	user, err := h.accounts.UpdateProfile(r.Context(), userID(r), services.ProfilePatch{
		Username:                req.Username,
		Email:                   req.Email,
		Password:                req.Password,
		NotificationPreferences: req.NotificationPreferences,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    ToUserDTO(user),
	})
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAccount(r.Context(), userID(r)); err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, msg string, user models.User) {
	token, err := h.tokens.IssueToken(user.ID, time.Now())
	if err != nil {
		h.logger.Error("issue token", zap.Int("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, map[string]any{
		"message":      msg,
		"access_token": token,
		"user":         ToUserDTO(user),
	})
}
