package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"
	"gramsetu-be/models"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up user management and summary routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin",
		middlewares.AuthMiddleware(),
		middlewares.RequireRole(models.RoleAdmin),
	)
	{
		admin.GET("/users", controllers.ListUsers)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.GET("/problems", controllers.GetAllProblems)
		admin.GET("/summary/status", controllers.GetStatusCounts)
		admin.GET("/summary/sector", controllers.GetSectorCounts)
	}
}
