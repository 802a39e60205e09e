package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/agents"
)

// CreateAgent registers a new voice agent owned by the caller.
func (h Handlers) CreateAgent(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req agents.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Agents.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAgents returns the caller's agents.
func (h Handlers) ListAgents(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Agents.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": list})
}

// GetAgent returns one agent; ownership is enforced by the service.
func (h Handlers) GetAgent(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	a, err := h.Agents.Get(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAgent applies a partial update to an owned agent.
func (h Handlers) UpdateAgent(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	var req agents.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Agents.Update(c.Request.Context(), userID, role, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAgent removes an owned agent.
func (h Handlers) DeleteAgent(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Agents.Delete(c.Request.Context(), userID, role, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
