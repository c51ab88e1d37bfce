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

// ProfileService defines profile reads and identity-scoped writes.
type ProfileService interface {
	CreateOrUpdate(ctx context.Context, callerID, identityID uuid.UUID, params model.CreateProfileParams) (model.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (model.Profile, bool, error)
	Update(ctx context.Context, callerID, identityID uuid.UUID, params model.UpdateProfileParams) (model.Profile, error)
	UploadImage(ctx context.Context, callerID, identityID uuid.UUID, upload model.ImageUpload) (model.Profile, error)
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
}

// Profile handles HTTP endpoints for profiles.
type Profile struct {
	profileService ProfileService
	logger         *logger.Logger
}

// NewProfile creates a new Profile handler.
func NewProfile(profileService ProfileService, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		logger:         logger,
	}
}

// Get returns the profile for the requested id, or 404 when the identity
// has not finished onboarding.
func (h *Profile) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed profile id")
		return
	}

	profile, found, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Profile handler: get failed",
			"profile_id", id,
			"error", err.Error())
		handleError(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "not_found", "profile not found")
		return
	}

	c.JSON(http.StatusOK, newProfileView(profile))
}

type upsertProfileRequest struct {
	Username        string   `json:"username"`
	Name            string   `json:"name"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location"`
	ProfileImage    *string  `json:"profile_image"`
	FavoriteGenres  []string `json:"favorite_genres"`
	FavoriteArtists []string `json:"favorite_artists"`
}

// Upsert creates or merges the caller's profile.
func (h *Profile) Upsert(c *gin.Context) {
	callerID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized", "missing authenticated identity")
		return
	}

	identityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed profile id")
		return
	}

	var req upsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	h.logger.Debug("Profile handler: processing upsert request",
		"profile_id", identityID)

	profile, err := h.profileService.CreateOrUpdate(c.Request.Context(), callerID, identityID, model.CreateProfileParams{
		Username:        req.Username,
		Name:            req.Name,
		Bio:             req.Bio,
		Location:        req.Location,
		ProfileImage:    req.ProfileImage,
		FavoriteGenres:  req.FavoriteGenres,
		FavoriteArtists: req.FavoriteArtists,
	})
	if err != nil {
		h.logger.Error("Profile handler: upsert failed",
			"profile_id", identityID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Profile handler: upsert completed",
		"profile_id", identityID)

	c.JSON(http.StatusOK, newProfileView(profile))
}

type updateProfileRequest struct {
	Username        *string  `json:"username"`
	Name            *string  `json:"name"`
	Bio             *string  `json:"bio"`
	Location        *string  `json:"location"`
	FavoriteGenres  []string `json:"favorite_genres"`
	FavoriteArtists []string `json:"favorite_artists"`
}

// Update applies a partial edit to the caller's own profile.
func (h *Profile) Update(c *gin.Context) {
	callerID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized", "missing authenticated identity")
		return
	}

	identityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed profile id")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), callerID, identityID, model.UpdateProfileParams{
		Username:        req.Username,
		Name:            req.Name,
		Bio:             req.Bio,
		Location:        req.Location,
		FavoriteGenres:  req.FavoriteGenres,
		FavoriteArtists: req.FavoriteArtists,
	})
	if err != nil {
		h.logger.Error("Profile handler: update failed",
			"profile_id", identityID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Profile handler: update completed",
		"profile_id", identityID)

	c.JSON(http.StatusOK, newProfileView(profile))
}

// UploadImage stores a multipart image into the named slot of the caller's
// profile and returns the updated profile.
func (h *Profile) UploadImage(c *gin.Context) {
	callerID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized", "missing authenticated identity")
		return
	}

	identityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "malformed profile id")
		return
	}

	slot := model.ImageSlot(c.Param("slot"))
	if !slot.Valid() {
		writeError(c, http.StatusBadRequest, "bad_request", "unknown image slot")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "failed to read image file")
		return
	}
	defer file.Close()

	h.logger.Debug("Profile handler: processing image upload",
		"profile_id", identityID,
		"slot", slot,
		"size", fileHeader.Size)

	profile, err := h.profileService.UploadImage(c.Request.Context(), callerID, identityID, model.ImageUpload{
		Slot:        slot,
		Reader:      file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.logger.Error("Profile handler: image upload failed",
			"profile_id", identityID,
			"slot", slot,
			"error", err.Error())
		handleError(c, err)
		return
	}

	h.logger.Info("Profile handler: image upload completed",
		"profile_id", identityID,
		"slot", slot)

	c.JSON(http.StatusOK, newProfileView(profile))
}

type usernameAvailableResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// UsernameAvailable reports whether a username is free to claim.
func (h *Profile) UsernameAvailable(c *gin.Context) {
	username := c.Param("username")

	available, err := h.profileService.CheckUsernameAvailable(c.Request.Context(), username)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, usernameAvailableResponse{
		Username:  username,
		Available: available,
	})
}
