package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/project"
)

// RegisterRoutes registers project CRUD routes on an authenticated group
func RegisterRoutes(api *gin.RouterGroup, svc *project.Service) {
	handler := NewHandler(svc)
	projects := api.Group("/projects")
	{
		projects.GET("", handler.List)
		projects.POST("", handler.Create)
		projects.GET("/:projectID", handler.Get)
		projects.PUT("/:projectID", handler.Update)
		projects.DELETE("/:projectID", handler.Delete)
		projects.POST("/:projectID/members/:userID", handler.AddMember)
		projects.DELETE("/:projectID/members/:userID", handler.RemoveMember)
	}
}
