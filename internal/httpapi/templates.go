package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/rbac"
	"github.com/webNext25/zoom-smart-dialer/internal/templates"
)

// ListTemplates returns the template gallery. Admins see every entry;
// customers only the public ones.
func (h Handlers) ListTemplates(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Templates.List(c.Request.Context(), rbac.IsAdmin(role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": list})
}

// GetTemplate returns one template, hiding private entries from customers.
func (h Handlers) GetTemplate(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	tpl, err := h.Templates.Get(c.Request.Context(), c.Param("id"), rbac.IsAdmin(role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// AdminCreateTemplate adds a template to the gallery.
func (h Handlers) AdminCreateTemplate(c *gin.Context) {
	var req templates.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tpl, err := h.Templates.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// AdminUpdateTemplate applies a partial update.
func (h Handlers) AdminUpdateTemplate(c *gin.Context) {
	var req templates.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tpl, err := h.Templates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// AdminDeleteTemplate removes a template from the gallery.
func (h Handlers) AdminDeleteTemplate(c *gin.Context) {
	if err := h.Templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
