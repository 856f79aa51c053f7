package routes

import (
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"
	"gramsetu-be/models"

	"github.com/gin-gonic/gin"
)

// OfficerRoutes sets up the sector workbench routes
func OfficerRoutes(r *gin.Engine) {
	officer := r.Group("/api/officer",
		middlewares.AuthMiddleware(),
		middlewares.RequireRole(models.RoleOfficer, models.RoleAdmin),
	)
	{
		officer.GET("/sector/:sector", controllers.GetSectorProblems)
		officer.PATCH("/problems/:id/status", controllers.UpdateProblemStatus)
		officer.POST("/problems/:id/escalate", controllers.EscalateProblem)
		officer.GET("/problems/:id/history", controllers.GetProblemHistory)
		officer.GET("/dashboard/summary", controllers.GetOfficerSummary)
	}
}
