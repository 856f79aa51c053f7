package workbench

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Push event type tags delivered on the sector channel.
const (
	EventProblemCreated   = "problem_created"
	EventStatusChanged    = "status_changed"
	EventProblemEscalated = "problem_escalated"
)

// ProblemRef is a problem identifier as carried in push events. The backend
// sends hex object IDs while older deployments sent numeric IDs; both decode
// to their string form.
type ProblemRef string

func (r *ProblemRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*r = ProblemRef(s)
		return nil
	}
	// Numeric token; keep its textual form.
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("problem_id is neither string nor number: %s", data)
	}
	*r = ProblemRef(data)
	return nil
}

// PushEvent is one discriminated message from the sector channel. Unrecognized
// type tags are preserved so they can still render a generic message.
type PushEvent struct {
	Type      string     `json:"type"`
	ProblemID ProblemRef `json:"problem_id"`
	Sector    string     `json:"sector,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
}

// Message synthesizes the human-readable notification text for the event.
// Unknown event types get a generic fallback, never silence.
func (e PushEvent) Message() string {
	switch e.Type {
	case EventProblemCreated:
		text := strings.TrimSpace(fmt.Sprintf("New problem reported: #%s %s", e.ProblemID, e.Title))
		if strings.EqualFold(e.Priority, "high") {
			text += " (High Priority)"
		}
		return text
	case EventStatusChanged:
		return fmt.Sprintf("Problem #%s status: %s", e.ProblemID, e.Status)
	case EventProblemEscalated:
		return fmt.Sprintf("Problem #%s escalated", e.ProblemID)
	default:
		id := string(e.ProblemID)
		if id == "" {
			id = "?"
		}
		return fmt.Sprintf("Update on problem #%s", id)
	}
}
