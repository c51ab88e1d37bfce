package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fync-app/fync-server/internal/api/http/middleware"
	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

// LinkerService runs the OAuth handshake with the music provider.
type LinkerService interface {
	BeginLink(ctx context.Context, userID uuid.UUID) (string, error)
	HandleCallback(ctx context.Context, userID uuid.UUID, code, state, providerErr string) (model.Profile, error)
}

// Spotify handles HTTP endpoints for the Spotify account link.
type Spotify struct {
	linker LinkerService
	logger *logger.Logger
}

// NewSpotify creates a new Spotify handler.
func NewSpotify(linker LinkerService, logger *logger.Logger) *Spotify {
	return &Spotify{linker: linker, logger: logger}
}

type beginLinkResponse struct {
	AuthURL string `json:"auth_url"`
}

// Begin starts a link handshake and returns the provider authorization URL.
func (h *Spotify) Begin(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized", "missing authenticated identity")
		return
	}

	authURL, err := h.linker.BeginLink(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Spotify handler: begin link failed",
			"user_id", userID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, beginLinkResponse{AuthURL: authURL})
}

// Callback completes a link handshake from the provider redirect and
// returns the enriched profile.
func (h *Spotify) Callback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized", "missing authenticated identity")
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	providerErr := c.Query("error")

	h.logger.Debug("Spotify handler: processing callback",
		"user_id", userID)

	profile, err := h.linker.HandleCallback(c.Request.Context(), userID, code, state, providerErr)
	if err != nil {
		h.logger.Error("Spotify handler: callback failed",
			"user_id", userID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Spotify handler: link completed",
		"user_id", userID)

	c.JSON(http.StatusOK, newProfileView(profile))
}
