package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"

	"github.com/gin-gonic/gin"
)

// DashboardRoutes sets up the shared dashboard routes
func DashboardRoutes(r *gin.Engine) {
	dashboard := r.Group("/api/dashboard", middlewares.AuthMiddleware())
	{
		dashboard.GET("/sector-distribution", controllers.GetSectorDistribution)
		dashboard.GET("/status-summary", controllers.GetStatusSummary)
	}
}
