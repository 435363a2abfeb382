package routes

import (
	"elsahm-admin/controllers"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(r *gin.Engine, h *controllers.Handler) {
	// Public auth routes
	auth := r.Group("/api/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
}
