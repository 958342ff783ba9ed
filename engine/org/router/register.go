package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/org"
)

// RegisterRoutes registers organisation configuration and holiday routes on
// an authenticated group. Mutations are PMO-only.
func RegisterRoutes(api *gin.RouterGroup, svc *org.Service) {
	handler := NewHandler(svc)
	group := api.Group("/organizations")
	{
		group.GET("/current", handler.GetCurrent)
		group.GET("/holidays", handler.ListHolidays)
	}
	admin := api.Group("/organizations")
	admin.Use(auth.RequireRole(core.RolePMO))
	{
		admin.PUT("/current", handler.UpdateWorkingConfig)
		admin.POST("/holidays", handler.AddHoliday)
		admin.DELETE("/holidays/:holidayID", handler.RemoveHoliday)
	}
}
