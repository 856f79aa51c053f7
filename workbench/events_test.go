package workbench

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStatusChanged(t *testing.T) {
	var event PushEvent
	err := json.Unmarshal([]byte(`{"type":"status_changed","problem_id":42,"status":"Resolved"}`), &event)
	require.NoError(t, err)

	assert.Equal(t, "Problem #42 status: Resolved", event.Message())
}

func TestMessageProblemCreatedHighPriority(t *testing.T) {
	var event PushEvent
	err := json.Unmarshal([]byte(`{"type":"problem_created","problem_id":7,"title":"Leak","priority":"high"}`), &event)
	require.NoError(t, err)

	assert.Equal(t, "New problem reported: #7 Leak (High Priority)", event.Message())
}

func TestMessageProblemCreatedNormalPriority(t *testing.T) {
	event := PushEvent{
		Type:      EventProblemCreated,
		ProblemID: "9",
		Title:     "Broken pump",
		Priority:  "medium",
	}
	assert.Equal(t, "New problem reported: #9 Broken pump", event.Message())
}

func TestMessageEscalated(t *testing.T) {
	event := PushEvent{Type: EventProblemEscalated, ProblemID: "13"}
	assert.Equal(t, "Problem #13 escalated", event.Message())
}

func TestMessageUnknownType(t *testing.T) {
	event := PushEvent{Type: "reassigned", ProblemID: "5"}
	assert.Equal(t, "Update on problem #5", event.Message())

	event = PushEvent{Type: "reassigned"}
	assert.Equal(t, "Update on problem #?", event.Message())
}

func TestProblemRefDecodesStringAndNumber(t *testing.T) {
	var byNumber PushEvent
	require.NoError(t, json.Unmarshal([]byte(`{"problem_id":42}`), &byNumber))
	assert.Equal(t, ProblemRef("42"), byNumber.ProblemID)

	var byString PushEvent
	require.NoError(t, json.Unmarshal([]byte(`{"problem_id":"68b1c2d3e4f5a6b7c8d9e0f1"}`), &byString))
	assert.Equal(t, ProblemRef("68b1c2d3e4f5a6b7c8d9e0f1"), byString.ProblemID)

	var byNull PushEvent
	require.NoError(t, json.Unmarshal([]byte(`{"problem_id":null}`), &byNull))
	assert.Equal(t, ProblemRef(""), byNull.ProblemID)
}

func TestProblemRefRejectsOtherTokens(t *testing.T) {
	var event PushEvent
	err := json.Unmarshal([]byte(`{"problem_id":{"a":1}}`), &event)
	assert.Error(t, err)
}
