package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicSettings serves the public configuration projection. This route is
// unauthenticated; the settings service guarantees only is_public entries can
// appear here.
func (h Handlers) PublicSettings(c *gin.Context) {
	out, err := h.Settings.Public(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// AdminListSettings returns every setting decrypted, grouped by category.
// RBAC: admin only.
func (h Handlers) AdminListSettings(c *gin.Context) {
	out, err := h.Settings.All(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

type putSettingRequest struct {
	Value    string `json:"value"`
	Category string `json:"category"`
	IsPublic bool   `json:"is_public"`
}

// AdminPutSetting creates or replaces one setting. The change is audited with
// the key only, never the value.
func (h Handlers) AdminPutSetting(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if key == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}
	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Settings.Set(c.Request.Context(), key, req.Value, req.Category, req.IsPublic, userID); err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogSettingChange(c.Request.Context(), userID, role, clientIP(c), key, "setting updated"); err != nil && h.Log != nil {
			h.Log.Warn("audit append failed", "error", err.Error())
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AdminDeleteSetting removes one setting.
func (h Handlers) AdminDeleteSetting(c *gin.Context) {
	userID, role, ok := identity(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if err := h.Settings.Delete(c.Request.Context(), key); err != nil {
		h.respondError(c, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogSettingChange(c.Request.Context(), userID, role, clientIP(c), key, "setting deleted"); err != nil && h.Log != nil {
			h.Log.Warn("audit append failed", "error", err.Error())
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
