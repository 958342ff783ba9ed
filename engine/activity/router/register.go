package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/project"
)

// RegisterRoutes registers nested activity CRUD under projects
func RegisterRoutes(api *gin.RouterGroup, svc *activity.Service, projects *project.Service) {
	handler := NewHandler(svc, projects)
	group := api.Group("/projects/:projectID/activities")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PUT("/:activityID", handler.Update)
		group.DELETE("/:activityID", handler.Delete)
	}
}
