package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
)

// RegisterRoutes registers nested task CRUD under project activities
func RegisterRoutes(
	api *gin.RouterGroup,
	svc *task.Service,
	activities *activity.Service,
	projects *project.Service,
) {
	handler := NewHandler(svc, activities, projects)
	group := api.Group("/projects/:projectID/activities/:activityID/tasks")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PUT("/:taskID", handler.Update)
		group.DELETE("/:taskID", handler.Delete)
	}
}
