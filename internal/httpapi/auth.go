package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and issues a JWT pair.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), u.ID, u.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          u,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new pair. The role is re-read from
// storage so a role change takes effect at the next refresh.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}

	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	u, err := h.Users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), u.ID, u.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Me returns the authenticated user's account.
func (h Handlers) Me(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
