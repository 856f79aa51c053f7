package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AIRoutes sets up the prediction routes
func AIRoutes(r *gin.Engine) {
	ai := r.Group("/api/ai", middlewares.AuthMiddleware())
	{
		ai.POST("/crop/recommend", controllers.RecommendCrop)
		ai.POST("/health/predict", controllers.PredictHealthRisk)
		ai.POST("/agri/predict_yield", controllers.PredictYield)
	}
}
