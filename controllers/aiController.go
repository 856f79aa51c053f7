package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/realtime"

	"github.com/gin-gonic/gin"
)

// aiClient talks to the external model service; predictions can be slow on a
// cold model, so the timeout is generous.
var aiClient = &http.Client{Timeout: 60 * time.Second}

const highSeverityThreshold = 80

// recommendCrops is the rule-based soil/season table used when no model
// service is involved.
func recommendCrops(soilType, season string) []string {
	st := strings.ToLower(strings.TrimSpace(soilType))
	sn := strings.ToLower(strings.TrimSpace(season))

	switch st {
	case "loamy":
		if sn == "winter" || sn == "summer" {
			return []string{"Wheat", "Maize"}
		}
		return []string{"Rice", "Vegetables"}
	case "sandy":
		if sn == "summer" || sn == "monsoon" {
			return []string{"Millets", "Groundnut"}
		}
		return []string{"Barley"}
	case "clayey":
		if sn == "monsoon" {
			return []string{"Rice", "Sugarcane"}
		}
		return []string{"Wheat"}
	}
	return []string{"Maize", "Pulses"}
}

// RecommendCrop suggests crops for a soil type and season
func RecommendCrop(c *gin.Context) {
	var input struct {
		SoilType string `json:"soil_type" binding:"required"`
		Season   string `json:"season" binding:"required"`
		Region   string `json:"region,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommended": recommendCrops(input.SoilType, input.Season),
		"confidence":  "rule-based",
	})
}

// proxyToModelService forwards the request body to the external AI service and
// relays the response verbatim. The model output is opaque to this portal.
func proxyToModelService(c *gin.Context, path string) []byte {
	baseURL := os.Getenv("AI_SERVICE_URL")
	if baseURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service not configured"})
		return nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return nil
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, strings.TrimRight(baseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build AI request"})
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := aiClient.Do(req)
	if err != nil {
		log.Printf("AI service call failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI service unavailable"})
		return nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read AI response"})
		return nil
	}

	c.Data(resp.StatusCode, "application/json", respBody)
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	return respBody
}

// PredictHealthRisk proxies a vitals sample to the health risk model. High
// severity results are broadcast as alerts on the healthcare channel.
func PredictHealthRisk(c *gin.Context) {
	respBody := proxyToModelService(c, "/health/predict")
	if respBody == nil {
		return
	}

	var result struct {
		Severity float64 `json:"severity"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return
	}
	if result.Severity >= highSeverityThreshold {
		var payload map[string]interface{}
		if err := json.Unmarshal(respBody, &payload); err == nil {
			realtime.NotifyPayload(models.Healthcare, gin.H{"type": "health_alert", "payload": payload})
		}
	}
}

// PredictYield proxies a crop yield estimation request to the agri model
func PredictYield(c *gin.Context) {
	proxyToModelService(c, "/agri/predict_yield")
}
