package main

import (
	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/httpapi"
	"github.com/webNext25/zoom-smart-dialer/internal/rbac"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Unauthenticated routes. The public settings projection is served
	// without a token so browser sessions can bootstrap before login.
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.GET("/settings/public", h.PublicSettings)

	// protected API group
	v1 := api.Group("")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)

		agents := v1.Group("/agents")
		{
			agents.POST("", h.CreateAgent)
			agents.GET("", h.ListAgents)
			agents.GET("/:id", h.GetAgent)
			agents.PATCH("/:id", h.UpdateAgent)
			agents.DELETE("/:id", h.DeleteAgent)
		}

		voices := v1.Group("/voices")
		{
			voices.GET("", h.ListVoices)
			voices.GET("/:id", h.GetVoice)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("", h.ListTemplates)
			templates.GET("/:id", h.GetTemplate)
		}

		recordings := v1.Group("/recordings")
		{
			recordings.GET("", h.ListRecordings)
			recordings.POST("", h.CreateRecording)
			recordings.GET("/:id", h.GetRecording)
		}

		v1.GET("/analytics", h.Analytics)

		calls := v1.Group("/calls")
		{
			calls.POST("/start", h.StartCall)
			calls.POST("/hangup", h.HangUp)
			calls.POST("/mute", h.ToggleMute)
			calls.GET("/session", h.GetSession)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAdmin())
		{
			admin.GET("/settings", h.AdminListSettings)
			admin.PUT("/settings/:key", h.AdminPutSetting)
			admin.DELETE("/settings/:key", h.AdminDeleteSetting)

			admin.GET("/users", h.AdminListUsers)
			admin.POST("/users", h.AdminCreateUser)
			admin.GET("/users/:id", h.AdminGetUser)
			admin.PATCH("/users/:id", h.AdminUpdateUser)
			admin.DELETE("/users/:id", h.AdminDeleteUser)
			admin.GET("/users/:id/usage", h.AdminUserUsage)

			admin.POST("/templates", h.AdminCreateTemplate)
			admin.PATCH("/templates/:id", h.AdminUpdateTemplate)
			admin.DELETE("/templates/:id", h.AdminDeleteTemplate)

			admin.GET("/voices", h.AdminListVoices)
			admin.POST("/voices", h.AdminCreateVoice)
			admin.PATCH("/voices/:id", h.AdminUpdateVoice)
			admin.DELETE("/voices/:id", h.AdminDeleteVoice)
			admin.POST("/voices/:id/assign", h.AdminAssignVoice)
			admin.POST("/voices/:id/unassign", h.AdminUnassignVoice)
		}
	}
}
