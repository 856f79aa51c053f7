package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HistoryAction enum
type HistoryAction string

const (
	ActionStatusChanged HistoryAction = "StatusChanged"
	ActionEscalated     HistoryAction = "Escalated"
)

// ProblemHistory is one immutable audit-trail entry for a problem
type ProblemHistory struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProblemID  primitive.ObjectID  `bson:"problem" json:"problem_id"`
	ChangedBy  *primitive.ObjectID `bson:"changedBy,omitempty" json:"changed_by,omitempty"`
	Action     HistoryAction       `bson:"action" json:"action"`
	FromStatus *ProblemStatus      `bson:"fromStatus,omitempty" json:"from_status,omitempty"`
	ToStatus   *ProblemStatus      `bson:"toStatus,omitempty" json:"to_status,omitempty"`
	Remark     *string             `bson:"remark,omitempty" json:"remark,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"created_at"`
}

// EnsureHistoryIndex creates a compound index for (problem, createdAt)
func EnsureHistoryIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "problem", Value: 1}, {Key: "createdAt", Value: 1}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
