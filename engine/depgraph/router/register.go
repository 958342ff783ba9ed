package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/depgraph"
)

// RegisterRoutes registers dependency edge routes on an authenticated group
func RegisterRoutes(api *gin.RouterGroup, svc *depgraph.Service) {
	handler := NewHandler(svc)
	api.POST("/dependencies", handler.Create)
	api.DELETE("/dependencies/:dependencyID", handler.Delete)
	api.GET("/activities/:activityID/dependencies", handler.ListForActivity)
	api.GET("/tasks/:taskID/dependencies", handler.ListForTask)
}
