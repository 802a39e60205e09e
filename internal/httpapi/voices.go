package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/voices"
)

// ListVoices returns the voices visible to the caller: public ones plus any
// explicitly assigned to them.
func (h Handlers) ListVoices(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Voices.ListVisible(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": list})
}

// GetVoice returns one voice if the caller can see it.
func (h Handlers) GetVoice(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	v, err := h.Voices.GetVisible(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// AdminListVoices returns the full voice library including private entries.
func (h Handlers) AdminListVoices(c *gin.Context) {
	list, err := h.Voices.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": list})
}

// AdminCreateVoice adds a voice to the library.
func (h Handlers) AdminCreateVoice(c *gin.Context) {
	var req voices.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := h.Voices.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// AdminUpdateVoice applies a partial update.
func (h Handlers) AdminUpdateVoice(c *gin.Context) {
	var req voices.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := h.Voices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// AdminDeleteVoice removes a voice from the library.
func (h Handlers) AdminDeleteVoice(c *gin.Context) {
	if err := h.Voices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type voiceAssignmentRequest struct {
	UserID string `json:"user_id"`
}

// AdminAssignVoice grants one user access to a private voice.
func (h Handlers) AdminAssignVoice(c *gin.Context) {
	adminID, role, ok := identity(c)
	if !ok {
		return
	}
	var req voiceAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	v, err := h.Voices.Assign(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogAdminAction(c.Request.Context(), adminID, role, clientIP(c), req.UserID, "voice assigned", "")
	}
	c.JSON(http.StatusOK, v)
}

// AdminUnassignVoice revokes a previously granted voice.
func (h Handlers) AdminUnassignVoice(c *gin.Context) {
	adminID, role, ok := identity(c)
	if !ok {
		return
	}
	var req voiceAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	v, err := h.Voices.Unassign(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogAdminAction(c.Request.Context(), adminID, role, clientIP(c), req.UserID, "voice unassigned", "")
	}
	c.JSON(http.StatusOK, v)
}
