package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/users"
)

// AdminListUsers returns every account.
func (h Handlers) AdminListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

// AdminCreateUser provisions a customer or admin account.
func (h Handlers) AdminCreateUser(c *gin.Context) {
	adminID, role, ok := identity(c)
	if !ok {
		return
	}
	var req users.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogAdminAction(c.Request.Context(), adminID, role, clientIP(c), u.ID, "user created", "")
	}
	c.JSON(http.StatusCreated, u)
}

// AdminGetUser returns one account.
func (h Handlers) AdminGetUser(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// AdminUpdateUser applies a partial account update, including quota changes.
func (h Handlers) AdminUpdateUser(c *gin.Context) {
	adminID, role, ok := identity(c)
	if !ok {
		return
	}
	var req users.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogAdminAction(c.Request.Context(), adminID, role, clientIP(c), u.ID, "user updated", "")
	}
	c.JSON(http.StatusOK, u)
}

// AdminDeleteUser removes an account.
func (h Handlers) AdminDeleteUser(c *gin.Context) {
	adminID, role, ok := identity(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogAdminAction(c.Request.Context(), adminID, role, clientIP(c), id, "user deleted", "")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AdminUserUsage returns a user's metered usage and remaining quota.
func (h Handlers) AdminUserUsage(c *gin.Context) {
	id := c.Param("id")
	used, err := h.Usage.UsedSeconds(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	remaining, err := h.Usage.RemainingSeconds(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("history_limit"))
	history, err := h.Usage.History(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"used_seconds":      used,
		"remaining_seconds": remaining,
		"history":           history,
	})
}
