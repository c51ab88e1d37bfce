package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fync-app/fync-server/internal/model"
)

// errorResponse is the uniform error body for every endpoint.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleError maps a service error onto an HTTP status and writes the
// uniform error body. Unrecognized errors never leak their message.
func handleError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeError(c, http.StatusBadRequest, "validation_error", validationErr.Error())
		return
	}

	var providerErr *model.ProviderError
	if errors.As(err, &providerErr) {
		writeError(c, http.StatusBadGateway, "provider_error", providerErr.Error())
		return
	}

	var storageErr *model.StorageError
	if errors.As(err, &storageErr) {
		writeError(c, http.StatusBadGateway, "storage_error", "image storage unavailable")
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, model.ErrEmailNotConfirmed):
		writeError(c, http.StatusForbidden, "email_not_confirmed", err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrUsernameTaken):
		writeError(c, http.StatusConflict, "username_taken", err.Error())
	case errors.Is(err, model.ErrProfileExists):
		writeError(c, http.StatusConflict, "profile_exists", err.Error())
	case errors.Is(err, model.ErrStateMismatch):
		writeError(c, http.StatusConflict, "state_mismatch", err.Error())
	case errors.Is(err, model.ErrSetupRequired):
		writeError(c, http.StatusServiceUnavailable, "setup_required", err.Error())
	case errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenMismatch):
		writeError(c, http.StatusUnauthorized, "invalid_token", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message, Code: code})
}
