package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fync-app/fync-server/internal/api/http/middleware"
	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/service"
)

// IdentityService defines account and session operations.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (model.User, bool, error)
	Authenticate(ctx context.Context, email, password string) (service.AuthResult, error)
	CurrentIdentity(ctx context.Context, accessToken string) (model.User, *model.Profile, bool, error)
	SignOut(ctx context.Context, refreshToken string) error
	ConfirmEmail(ctx context.Context, token string) (model.User, error)
	ResendConfirmation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
}

// TokenService defines token refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
}

// Auth handles HTTP endpoints for accounts and sessions.
type Auth struct {
	identityService IdentityService
	tokenService    TokenService
	logger          *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(identityService IdentityService, tokenService TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		identityService: identityService,
		tokenService:    tokenService,
		logger:          logger,
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	User                userView `json:"user"`
	ConfirmationPending bool     `json:"confirmation_pending"`
}

// SignUp creates a new account.
func (h *Auth) SignUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	h.logger.Debug("Auth handler: processing signup request",
		"email", req.Email)

	user, pending, err := h.identityService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: signup failed",
			"email", req.Email,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Auth handler: signup completed",
		"user_id", user.ID)

	c.JSON(http.StatusCreated, signupResponse{
		User:                newUserView(user),
		ConfirmationPending: pending,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User            userView     `json:"user"`
	Profile         *profileView `json:"profile"`
	AccessToken     string       `json:"access_token"`
	RefreshToken    string       `json:"refresh_token"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
}

// Login authenticates a credential pair and returns a token pair.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	result, err := h.identityService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		handleError(c, err)
		return
	}

	resp := loginResponse{
		User:            newUserView(result.User),
		AccessToken:     result.Tokens.AccessToken,
		RefreshToken:    result.Tokens.RefreshToken,
		AccessExpiresAt: result.Tokens.AccessExpiresAt,
	}
	if result.Profile != nil {
		view := newProfileView(*result.Profile)
		resp.Profile = &view
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", result.User.ID)

	c.JSON(http.StatusOK, resp)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented refresh token. Always succeeds.
func (h *Auth) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.identityService.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// Refresh rotates a refresh token and returns a fresh token pair.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		writeError(c, http.StatusBadRequest, "bad_request", "refresh_token is required")
		return
	}

	pair, err := h.tokenService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: refresh failed",
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, refreshResponse{
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: pair.AccessExpiresAt,
	})
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *userView    `json:"user,omitempty"`
	Profile       *profileView `json:"profile,omitempty"`
}

// Me resolves the identity behind the bearer token. A missing or invalid
// token renders the signed-out shape rather than an error.
func (h *Auth) Me(c *gin.Context) {
	token := middleware.BearerToken(c)

	user, profile, ok, err := h.identityService.CurrentIdentity(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("Auth handler: identity lookup failed",
			"error", err.Error())
		handleError(c, err)
		return
	}

	resp := meResponse{Authenticated: ok}
	if ok {
		view := newUserView(user)
		resp.User = &view
	}
	if profile != nil {
		view := newProfileView(*profile)
		resp.Profile = &view
	}

	c.JSON(http.StatusOK, resp)
}

type confirmRequest struct {
	Token string `json:"token"`
}

// Confirm consumes an email confirmation token.
func (h *Auth) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	user, err := h.identityService.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendConfirmation queues a fresh confirmation email.
func (h *Auth) ResendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	if err := h.identityService.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// PasswordReset queues a password reset email.
func (h *Auth) PasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	if err := h.identityService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
