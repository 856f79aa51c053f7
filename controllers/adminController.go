package controllers

import (
	"context"
	"net/http"
	"time"

	"gramsetu-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListUsers returns all registered users (admin only)
func ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := userCollection().Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser removes a user along with the problems they submitted
func DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := userCollection().DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Remove the user's submissions as well
	_, _ = problemCollection().DeleteMany(ctx, bson.M{"submittedBy": userID})

	c.JSON(http.StatusOK, gin.H{"deleted": true, "user_id": userID.Hex()})
}

// GetAllProblems returns every problem across sectors, newest first (admin only)
func GetAllProblems(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "dateSubmitted", Value: -1}})
	cursor, err := problemCollection().Find(ctx, bson.M{}, findOptions)
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

// groupCounts runs a $group/$count aggregation over the problems collection
func groupCounts(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	cursor, err := problemCollection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := row.ID
		if key == "" {
			key = "Unknown"
		}
		counts[key] = row.Count
	}
	return counts, nil
}

// GetStatusCounts returns problem counts grouped by status (admin only)
func GetStatusCounts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := groupCounts(ctx, "status")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status counts"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetSectorCounts returns problem counts grouped by sector (admin only)
func GetSectorCounts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := groupCounts(ctx, "sector")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sector counts"})
		return
	}
	c.JSON(http.StatusOK, counts)
}
