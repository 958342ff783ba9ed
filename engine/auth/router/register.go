package router

import (
	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
)

// RegisterRoutes registers all auth routes. Login, refresh, and logout are
// public; everything else sits behind the bearer middleware.
func RegisterRoutes(apiBase *gin.RouterGroup, svc *auth.Service, middleware *auth.Middleware) {
	handler := NewHandler(svc)
	authGroup := apiBase.Group("/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.POST("/logout", handler.Logout)
	}
	protected := apiBase.Group("/auth")
	protected.Use(middleware.Authenticate())
	{
		protected.GET("/me", handler.Me)
		protected.POST("/change-password", handler.ChangePassword)
		protected.POST("/logout-all-devices", handler.LogoutAllDevices)
	}
	users := apiBase.Group("/auth/users")
	users.Use(middleware.Authenticate(), auth.RequireRole(core.RolePMO))
	{
		users.POST("", handler.CreateUser)
	}
}
