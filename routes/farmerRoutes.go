package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"

	"github.com/gin-gonic/gin"
)

// FarmerRoutes sets up the problem submission routes
func FarmerRoutes(r *gin.Engine) {
	farmer := r.Group("/api/farmer", middlewares.AuthMiddleware())
	{
		farmer.POST("/problems", middlewares.ProblemRateLimiter(10), controllers.CreateProblem)
		farmer.GET("/problems", controllers.GetMyProblems)
	}
}
