package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gramsetu-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const dashboardWindow = 30 * 24 * time.Hour

// GetSectorDistribution returns per-sector problem counts for the last 30 days
func GetSectorDistribution(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	since := time.Now().Add(-dashboardWindow)
	sectors := []models.Sector{
		models.Healthcare, models.Agriculture, models.Infrastructure,
		models.Education, models.Water,
	}

	distribution := make(map[string]int64, len(sectors))
	for _, sector := range sectors {
		count, err := problemCollection().CountDocuments(ctx, bson.M{
			"sector":        sector,
			"dateSubmitted": bson.M{"$gte": since},
		})
		if err != nil {
			count = 0
		}
		distribution[string(sector)] = count
	}

	c.JSON(http.StatusOK, gin.H{"distribution": distribution})
}

// GetStatusSummary returns per-status problem counts for the last 30 days
func GetStatusSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	since := time.Now().Add(-dashboardWindow)
	statuses := []models.ProblemStatus{
		models.StatusPending, models.StatusInProgress,
		models.StatusResolved, models.StatusEscalated,
	}

	summary := gin.H{}
	var total int64
	for _, status := range statuses {
		count, err := problemCollection().CountDocuments(ctx, bson.M{
			"status":        status,
			"dateSubmitted": bson.M{"$gte": since},
		})
		if err != nil {
			count = 0
		}
		key := strings.ReplaceAll(strings.ToLower(string(status)), " ", "_")
		summary[key] = count
		total += count
	}
	summary["total_month"] = total

	c.JSON(http.StatusOK, summary)
}
