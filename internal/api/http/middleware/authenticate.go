package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fync-app/fync-server/internal/logger"
)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "user_id"

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into the
// request context.
type Authenticate struct {
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, logger: logger}
}

// Handle parses the Authorization header, validates the token and stores
// the user id for downstream handlers. Requests without a valid token are
// rejected with 401.
func (m *Authenticate) Handle(c *gin.Context) {
	token := BearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing authorization token",
			"code":  "unauthorized",
		})
		return
	}

	userID, err := m.tokenService.GetUserID(c.Request.Context(), token)
	if err != nil || userID == uuid.Nil {
		m.logger.Debug("Authenticate middleware: rejected token")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid authorization token",
			"code":  "unauthorized",
		})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns an empty string when the header is absent or not a bearer scheme.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

// UserID retrieves the authenticated user id stored by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
