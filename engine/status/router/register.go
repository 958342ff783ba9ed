package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/status"
)

// RegisterRoutes registers status lifecycle routes on an authenticated group
func RegisterRoutes(api *gin.RouterGroup, svc *status.Service) {
	handler := NewHandler(svc)
	api.PATCH("/activities/:activityID/status", handler.UpdateActivityStatus)
	api.PATCH("/activities/:activityID/recalculate-progress", handler.RecalculateActivityProgress)
	api.GET("/activities/:activityID/tracking", handler.ActivityTracking)
	api.PATCH("/tasks/:taskID/status", handler.UpdateTaskStatus)
	api.PATCH("/tasks/:taskID/progress", handler.UpdateTaskProgress)
	api.GET("/tasks/:taskID/tracking", handler.TaskTracking)
}
