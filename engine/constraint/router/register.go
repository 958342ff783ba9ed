package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/constraint"
)

// RegisterRoutes registers constraint and date-edit routes on an
// authenticated group
func RegisterRoutes(api *gin.RouterGroup, svc *constraint.Service) {
	handler := NewHandler(svc)
	api.POST("/constraints", handler.Create)
	api.DELETE("/constraints/:constraintID", handler.Delete)
	for _, scope := range []routeScope{
		{prefix: "/activities/:activityID", param: "activityID", itemType: "activity"},
		{prefix: "/tasks/:taskID", param: "taskID", itemType: "task"},
	} {
		api.GET(scope.prefix+"/constraints", handler.listForScope(scope))
		api.POST(scope.prefix+"/validate-dates", handler.validateForScope(scope))
		api.POST(scope.prefix+"/apply-dates", handler.applyForScope(scope))
		api.GET(scope.prefix+"/valid-range", handler.rangeForScope(scope))
		api.POST(scope.prefix+"/propagate-dates", handler.propagateForScope(scope))
	}
}
