package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {

	// --- Project Lifecycle ---
	projectGroup := router.Group("/project")
	{
		projectGroup.POST("/generate", h.GenerateSite)    // Generate a new project from a prompt
		projectGroup.POST("/:id/modify", h.ModifyProject) // Apply a described change to an existing project
		projectGroup.POST("/:id/ask", h.AskProject)       // Answer a question about an existing project
		projectGroup.GET("/:id", h.GetProject)            // Get the stored record for a project
		projectGroup.GET("/:id/files", h.GetProjectFiles) // Get the files for a specific project
		projectGroup.GET("/:id/events", h.Events)         // Websocket stream of generation progress
	}

	// --- Listing and Utilities ---
	router.GET("/projects", h.ListProjects)
	router.GET("/health", h.Health)
}
