package main

import (
	"log"
	"net/http"
	"os"

	"gramsetu-be/config"
	"gramsetu-be/models"
	"gramsetu-be/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	log.Println("MongoDB connection established successfully!")

	if err := models.EnsureHistoryIndex(config.GetCollection("problem_history")); err != nil {
		log.Printf("Failed to ensure history index: %v", err)
	}

	config.ConnectRedis()

	r := gin.Default()

	// The portal frontend runs on the Vite dev server during development
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r)
	routes.FarmerRoutes(r)
	routes.OfficerRoutes(r)
	routes.AdminRoutes(r)
	routes.DashboardRoutes(r)
	routes.AIRoutes(r)
	routes.WSRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
