package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sector enum
type Sector string

const (
	Healthcare     Sector = "healthcare"
	Agriculture    Sector = "agriculture"
	Infrastructure Sector = "infrastructure"
	Education      Sector = "education"
	Water          Sector = "water"
)

// ValidSector reports whether s is a known sector tag.
func ValidSector(s string) bool {
	switch Sector(s) {
	case Healthcare, Agriculture, Infrastructure, Education, Water:
		return true
	}
	return false
}

// Priority enum
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ProblemStatus enum
type ProblemStatus string

const (
	StatusPending    ProblemStatus = "Pending"
	StatusInProgress ProblemStatus = "In Progress"
	StatusResolved   ProblemStatus = "Resolved"
	StatusEscalated  ProblemStatus = "Escalated"
)

// ParseStatus normalizes a status string into the closed enum. Matching is
// case-insensitive and "Solved" is accepted as a legacy synonym for Resolved.
func ParseStatus(s string) (ProblemStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "in progress":
		return StatusInProgress, true
	case "resolved", "solved":
		return StatusResolved, true
	case "escalated":
		return StatusEscalated, true
	}
	return "", false
}

// IsTerminal reports whether the status closes out a problem.
func (s ProblemStatus) IsTerminal() bool {
	return s == StatusResolved
}

// Problem represents a village-development problem reported by a user
type Problem struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string              `bson:"title" json:"title"`
	Description      string              `bson:"description" json:"description"`
	Sector           Sector              `bson:"sector" json:"sector"`
	Location         string              `bson:"location,omitempty" json:"location,omitempty"`
	Priority         Priority            `bson:"priority" json:"priority"`
	Status           ProblemStatus       `bson:"status" json:"status"`
	SubmittedBy      primitive.ObjectID  `bson:"submittedBy" json:"submittedBy"`
	AssignedTo       *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	OfficerRemarks   *string             `bson:"officerRemarks,omitempty" json:"officerRemarks,omitempty"`
	EscalatedToAdmin bool                `bson:"escalatedToAdmin" json:"escalatedToAdmin"`
	DateSubmitted    time.Time           `bson:"dateSubmitted" json:"dateSubmitted"`
	DateResolved     *time.Time          `bson:"dateResolved,omitempty" json:"dateResolved,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
