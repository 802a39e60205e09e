// Package httpapi holds the HTTP handlers. Keep these thin: parse/validate
// input, call internal services, return JSON.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/agents"
	"github.com/webNext25/zoom-smart-dialer/internal/audit"
	"github.com/webNext25/zoom-smart-dialer/internal/auth"
	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
	"github.com/webNext25/zoom-smart-dialer/internal/recordings"
	"github.com/webNext25/zoom-smart-dialer/internal/settings"
	"github.com/webNext25/zoom-smart-dialer/internal/templates"
	"github.com/webNext25/zoom-smart-dialer/internal/usage"
	"github.com/webNext25/zoom-smart-dialer/internal/users"
	"github.com/webNext25/zoom-smart-dialer/internal/voices"
)

// Handlers groups HTTP handlers for dependency injection.
type Handlers struct {
	Auth       *auth.Manager
	Users      *users.Service
	Agents     *agents.Service
	Voices     *voices.Service
	Recordings *recordings.Service
	Templates  *templates.Service
	Settings   *settings.Service
	Usage      *usage.Service
	Audit      *audit.Service
	Bridge     *bridge.Manager
	Log        *slog.Logger
}

// identity pulls the authenticated user from the request context. The auth
// middleware guarantees both values on protected routes.
func identity(c *gin.Context) (userID, role string, ok bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	role, _ = auth.Role(c.Request.Context())
	return userID, role, true
}

// respondError maps service sentinels to HTTP statuses. Internal errors are
// logged but never echoed to the client.
func (h Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, agents.ErrInvalidArgument),
		errors.Is(err, voices.ErrInvalidArgument),
		errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, recordings.ErrInvalidArgument),
		errors.Is(err, settings.ErrInvalidArgument),
		errors.Is(err, templates.ErrInvalidArgument),
		errors.Is(err, usage.ErrInvalidArgument),
		errors.Is(err, bridge.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, agents.ErrNotFound),
		errors.Is(err, voices.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, recordings.ErrNotFound),
		errors.Is(err, templates.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, agents.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, users.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, bridge.ErrSessionActive):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a call session is already active"})
	case errors.Is(err, bridge.ErrQuotaExceeded):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "call minutes quota exceeded"})
	case errors.Is(err, bridge.ErrConfiguration):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "calling is not configured"})
	case errors.Is(err, bridge.ErrProvider):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "voice provider unavailable"})
	default:
		if h.Log != nil {
			h.Log.Error("request failed",
				slog.String("path", c.FullPath()),
				slog.String("error", err.Error()))
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func clientIP(c *gin.Context) string { return c.ClientIP() }
