package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gramsetu-be/config"
	"gramsetu-be/models"
	"gramsetu-be/realtime"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections are resolved lazily so importing the package never requires a
// live database.
func problemCollection() *mongo.Collection { return config.GetCollection("problems") }
func historyCollection() *mongo.Collection { return config.GetCollection("problem_history") }
func userCollection() *mongo.Collection { return config.GetCollection("users") }

// splitFacet splits a comma-joined facet parameter into trimmed, non-empty values.
func splitFacet(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildSectorFilter translates the listing query parameters into a Mongo filter.
// Facet parameters are comma-joined sets; absent or empty parameters match all.
// Status values are normalized through the closed enum, unknown values are
// dropped rather than matched as substrings.
func buildSectorFilter(sector models.Sector, status, priority, location, q string) bson.M {
	filter := bson.M{"sector": sector}

	if statuses := splitFacet(status); len(statuses) > 0 {
		var normalized []models.ProblemStatus
		for _, s := range statuses {
			if ps, ok := models.ParseStatus(s); ok {
				normalized = append(normalized, ps)
			}
		}
		if len(normalized) == 1 {
			filter["status"] = normalized[0]
		} else if len(normalized) > 1 {
			filter["status"] = bson.M{"$in": normalized}
		}
	}

	if priorities := splitFacet(priority); len(priorities) > 0 {
		var normalized []models.Priority
		for _, p := range priorities {
			if models.ValidPriority(strings.ToLower(p)) {
				normalized = append(normalized, models.Priority(strings.ToLower(p)))
			}
		}
		if len(normalized) == 1 {
			filter["priority"] = normalized[0]
		} else if len(normalized) > 1 {
			filter["priority"] = bson.M{"$in": normalized}
		}
	}

	if location != "" {
		filter["location"] = bson.M{"$regex": location, "$options": "i"}
	}

	if q != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": q, "$options": "i"}},
			{"description": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	return filter
}

// buildSectorSort maps the orderBy/orderDir parameters onto a Mongo sort
// document, defaulting to newest submissions first.
func buildSectorSort(orderBy, orderDir string) bson.D {
	fieldMap := map[string]string{
		"date_submitted": "dateSubmitted",
		"priority":       "priority",
		"status":         "status",
		"location":       "location",
	}
	field, ok := fieldMap[orderBy]
	if !ok {
		field = "dateSubmitted"
	}
	dir := -1
	if orderDir == "asc" {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}

// GetSectorProblems lists a sector's problems with multi-facet filtering and sorting
func GetSectorProblems(c *gin.Context) {
	sectorParam := c.Param("sector")
	if !models.ValidSector(sectorParam) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector"})
		return
	}

	filter := buildSectorFilter(
		models.Sector(sectorParam),
		c.Query("status"),
		c.Query("priority"),
		c.Query("location"),
		c.Query("q"),
	)
	sortDoc := buildSectorSort(c.DefaultQuery("orderBy", "date_submitted"), c.DefaultQuery("orderDir", "desc"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := problemCollection().Find(ctx, filter, options.Find().SetSort(sortDoc))
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

// applyStatusChange mutates a problem's status, appends the audit-trail entry
// and returns the updated document.
func applyStatusChange(ctx context.Context, problemID primitive.ObjectID, status models.ProblemStatus, officerID *primitive.ObjectID, remarks *string, escalated bool) (*models.Problem, error) {
	var problem models.Problem
	if err := problemCollection().FindOne(ctx, bson.M{"_id": problemID}).Decode(&problem); err != nil {
		return nil, err
	}
	prevStatus := problem.Status

	update := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if status.IsTerminal() {
		update["dateResolved"] = time.Now()
	}
	if officerID != nil {
		update["assignedTo"] = *officerID
	}
	if remarks != nil {
		update["officerRemarks"] = *remarks
	}
	if escalated {
		update["escalatedToAdmin"] = true
	}

	if _, err := problemCollection().UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$set": update}); err != nil {
		return nil, err
	}

	action := models.ActionStatusChanged
	if escalated {
		action = models.ActionEscalated
	}
	entry := models.ProblemHistory{
		ID:         primitive.NewObjectID(),
		ProblemID:  problemID,
		ChangedBy:  officerID,
		Action:     action,
		FromStatus: &prevStatus,
		ToStatus:   &status,
		Remark:     remarks,
		CreatedAt:  time.Now(),
	}
	// History is best effort: a failed audit insert must not fail the mutation.
	_, _ = historyCollection().InsertOne(ctx, entry)

	if err := problemCollection().FindOne(ctx, bson.M{"_id": problemID}).Decode(&problem); err != nil {
		return nil, err
	}
	return &problem, nil
}

// UpdateProblemStatus handles PATCH /problems/:id/status for officers
func UpdateProblemStatus(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var input struct {
		Status         string  `json:"status" binding:"required"`
		OfficerRemarks *string `json:"officer_remarks,omitempty"`
		AssignToSelf   bool    `json:"assign_to_self,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, ok := models.ParseStatus(input.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var officerID *primitive.ObjectID
	if input.AssignToSelf {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		if objID, err := primitive.ObjectIDFromHex(userID.(string)); err == nil {
			officerID = &objID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := applyStatusChange(ctx, problemID, status, officerID, input.OfficerRemarks, false)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	realtime.Notify(realtime.Event{
		Type:      "status_changed",
		ProblemID: updated.ID.Hex(),
		Sector:    updated.Sector,
		Status:    updated.Status,
		Priority:  updated.Priority,
	})

	c.JSON(http.StatusOK, updated)
}

// EscalateProblem handles POST /problems/:id/escalate for officers
func EscalateProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var input struct {
		Remarks *string `json:"remarks,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	var officerID *primitive.ObjectID
	if objID, err := primitive.ObjectIDFromHex(userID.(string)); err == nil {
		officerID = &objID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := applyStatusChange(ctx, problemID, models.StatusEscalated, officerID, input.Remarks, true)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to escalate problem"})
		}
		return
	}

	realtime.Notify(realtime.Event{
		Type:      "problem_escalated",
		ProblemID: updated.ID.Hex(),
		Sector:    updated.Sector,
		Status:    updated.Status,
		Priority:  updated.Priority,
	})

	c.JSON(http.StatusOK, updated)
}

// GetProblemHistory returns the ordered audit trail for one problem
func GetProblemHistory(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := historyCollection().Find(ctx, bson.M{"problem": problemID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	defer cursor.Close(ctx)

	entries := make([]models.ProblemHistory, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode history"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetOfficerSummary returns current-month workload counts, optionally per sector
func GetOfficerSummary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	base := bson.M{"dateSubmitted": bson.M{"$gte": monthStart}}
	if sector := c.Query("sector"); sector != "" {
		if !models.ValidSector(sector) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector"})
			return
		}
		base["sector"] = sector
	}

	countWith := func(extra bson.M) int64 {
		filter := bson.M{}
		for k, v := range base {
			filter[k] = v
		}
		for k, v := range extra {
			filter[k] = v
		}
		n, err := problemCollection().CountDocuments(ctx, filter)
		if err != nil {
			return 0
		}
		return n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_month":   countWith(bson.M{}),
		"pending":       countWith(bson.M{"status": models.StatusPending}),
		"high_priority": countWith(bson.M{"priority": models.PriorityHigh}),
		"resolved":      countWith(bson.M{"status": models.StatusResolved}),
	})
}
