// Package workbench implements the client-side data layer behind a sector
// problem view: filter state, query building, the fetched problem list, live
// alert handling over the push channel, and the mutation dispatcher. Each view
// constructs its own isolated instances; nothing here is shared across views.
package workbench

import (
	"net/url"
	"strings"

	"gramsetu-be/models"
)

// Sort keys accepted by the sector listing endpoint.
const (
	OrderByDateSubmitted = "date_submitted"
	OrderByPriority      = "priority"
	OrderByStatus        = "status"
	OrderByLocation      = "location"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// FilterState holds the facet selections and sort of one sector view. Facet
// selections keep their selection order so repeated Params builds are stable.
// An empty selection set means "match all", never "match none".
type FilterState struct {
	statuses   []models.ProblemStatus
	priorities []models.Priority

	Query    string
	Location string
	OrderBy  string
	OrderDir string
}

// NewFilterState returns a state with no facets selected, sorted by submission
// date descending.
func NewFilterState() *FilterState {
	return &FilterState{
		OrderBy:  OrderByDateSubmitted,
		OrderDir: OrderDesc,
	}
}

// ToggleStatus adds the status to the selection, or removes it when already
// selected.
func (f *FilterState) ToggleStatus(s models.ProblemStatus) {
	for i, sel := range f.statuses {
		if sel == s {
			f.statuses = append(f.statuses[:i], f.statuses[i+1:]...)
			return
		}
	}
	f.statuses = append(f.statuses, s)
}

// TogglePriority adds the priority to the selection, or removes it when
// already selected.
func (f *FilterState) TogglePriority(p models.Priority) {
	for i, sel := range f.priorities {
		if sel == p {
			f.priorities = append(f.priorities[:i], f.priorities[i+1:]...)
			return
		}
	}
	f.priorities = append(f.priorities, p)
}

// Statuses returns the selected statuses in selection order.
func (f *FilterState) Statuses() []models.ProblemStatus {
	out := make([]models.ProblemStatus, len(f.statuses))
	copy(out, f.statuses)
	return out
}

// Priorities returns the selected priorities in selection order.
func (f *FilterState) Priorities() []models.Priority {
	out := make([]models.Priority, len(f.priorities))
	copy(out, f.priorities)
	return out
}

// Reset clears every facet, the text filters, and restores the default sort.
func (f *FilterState) Reset() {
	f.statuses = nil
	f.priorities = nil
	f.Query = ""
	f.Location = ""
	f.OrderBy = OrderByDateSubmitted
	f.OrderDir = OrderDesc
}

// Params builds the request parameters for the sector listing endpoint.
// Empty facets and empty strings are omitted entirely; multi-value facets are
// comma-joined in selection order. The sort pair is always present.
func (f *FilterState) Params() url.Values {
	params := url.Values{}

	if len(f.statuses) > 0 {
		parts := make([]string, len(f.statuses))
		for i, s := range f.statuses {
			parts[i] = string(s)
		}
		params.Set("status", strings.Join(parts, ","))
	}
	if len(f.priorities) > 0 {
		parts := make([]string, len(f.priorities))
		for i, p := range f.priorities {
			parts[i] = string(p)
		}
		params.Set("priority", strings.Join(parts, ","))
	}
	if f.Location != "" {
		params.Set("location", f.Location)
	}
	if f.Query != "" {
		params.Set("q", f.Query)
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = OrderByDateSubmitted
	}
	orderDir := f.OrderDir
	if orderDir == "" {
		orderDir = OrderDesc
	}
	params.Set("orderBy", orderBy)
	params.Set("orderDir", orderDir)

	return params
}
