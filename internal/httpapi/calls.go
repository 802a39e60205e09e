package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
	"github.com/webNext25/zoom-smart-dialer/pkg/logger"
)

type startCallRequest struct {
	AgentID     string `json:"agent_id"`
	Destination string `json:"destination"`
}

// StartCall dials an outbound call with one of the caller's agents. The
// agent configuration is snapshotted here; edits made during the call do not
// reach the live session.
func (h Handlers) StartCall(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AgentID == "" || req.Destination == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "agent_id and destination required"})
		return
	}

	agent, err := h.Agents.Get(c.Request.Context(), userID, role, req.AgentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	snapshot := bridge.AgentSnapshot{
		AgentID:       agent.ID,
		Name:          agent.Name,
		SystemPrompt:  agent.SystemPrompt,
		FirstMessage:  agent.FirstMessage,
		ModelProvider: agent.ModelProvider,
		VoiceProvider: "elevenlabs",
	}
	if agent.VoiceID != "" {
		// The agent references a library voice; resolve it to the provider's
		// identifiers. A voice the caller can no longer see falls back to the
		// platform default.
		if v, err := h.Voices.GetVisible(c.Request.Context(), userID, agent.VoiceID); err == nil {
			snapshot.VoiceProvider = v.Provider
			snapshot.VoiceID = v.ProviderVoiceID
		}
	}

	sess, err := h.Bridge.StartCall(c.Request.Context(), userID, snapshot, req.Destination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogCallSession(c.Request.Context(), userID, clientIP(c), sess.CallID, agent.ID, "call started")
	}
	logger.FromGin(c).Info("call started", "call_id", sess.CallID, "agent_id", agent.ID)
	c.JSON(http.StatusOK, sess)
}

// HangUp ends the caller's session. Idempotent.
func (h Handlers) HangUp(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Bridge.HangUp(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Bridge.Session(userID))
}

// ToggleMute flips the caller's microphone state.
func (h Handlers) ToggleMute(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	muted, err := h.Bridge.ToggleMute(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"muted": muted})
}

// GetSession returns the caller's live session view.
func (h Handlers) GetSession(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Bridge.Session(userID))
}
