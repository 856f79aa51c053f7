package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/realtime"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateProblem handles the submission of a new problem
func CreateProblem(c *gin.Context) {
	// Extract user ID from context (set by auth middleware)
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	submittedByID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=1000"`
		Sector      string  `json:"sector" binding:"required"`
		Location    string  `json:"location,omitempty"`
		Priority    *string `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidSector(input.Sector) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector"})
		return
	}

	// Priority defaults to medium when the submitter leaves it unset
	priority := models.PriorityMedium
	if input.Priority != nil {
		p := strings.ToLower(*input.Priority)
		if !models.ValidPriority(p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		priority = models.Priority(p)
	}

	problem := models.Problem{
		ID:            primitive.NewObjectID(),
		Title:         input.Title,
		Description:   input.Description,
		Sector:        models.Sector(input.Sector),
		Location:      input.Location,
		Priority:      priority,
		Status:        models.StatusPending,
		SubmittedBy:   submittedByID,
		DateSubmitted: time.Now(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := problemCollection().InsertOne(ctx, problem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create problem"})
		return
	}

	realtime.Notify(realtime.Event{
		Type:         "problem_created",
		ProblemID:    problem.ID.Hex(),
		Sector:       problem.Sector,
		Title:        problem.Title,
		Priority:     problem.Priority,
		HighPriority: problem.Priority == models.PriorityHigh,
	})

	c.JSON(http.StatusCreated, problem)
}

// GetMyProblems retrieves all problems submitted by the authenticated user
func GetMyProblems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userObjID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "dateSubmitted", Value: -1}})
	cursor, err := problemCollection().Find(ctx, bson.M{"submittedBy": userObjID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}
	defer cursor.Close(ctx)

	problems := make([]models.Problem, 0)
	if err := cursor.All(ctx, &problems); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}
