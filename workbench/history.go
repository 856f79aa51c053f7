package workbench

import (
	"context"
	"sync"

	"gramsetu-be/models"
)

// HistoryFetchFunc loads the audit trail for one problem.
type HistoryFetchFunc func(ctx context.Context, problemID string) ([]models.ProblemHistory, error)

// HistoryView is the render state of one history invocation. Items stay in
// server order.
type HistoryView struct {
	ProblemID string
	Loading   bool
	Err       error
	Items     []models.ProblemHistory
}

// HistoryViewer fetches a problem's audit trail on demand. Opening a new
// problem supersedes any in-flight fetch: each request carries a token and
// only the response matching the latest token is ever applied, so a slow
// stale response cannot overwrite a newer one.
type HistoryViewer struct {
	fetch HistoryFetchFunc

	mu      sync.Mutex
	token   uint64
	current HistoryView

	// OnChange, when set, receives the view state after every transition.
	OnChange func(HistoryView)
}

func NewHistoryViewer(fetch HistoryFetchFunc) *HistoryViewer {
	return &HistoryViewer{fetch: fetch}
}

// Open starts a fetch for the given problem, replacing any in-flight one.
func (v *HistoryViewer) Open(ctx context.Context, problemID string) {
	v.mu.Lock()
	v.token++
	token := v.token
	v.current = HistoryView{ProblemID: problemID, Loading: true}
	v.mu.Unlock()
	v.notify()

	go func() {
		items, err := v.fetch(ctx, problemID)

		v.mu.Lock()
		if token != v.token {
			// A newer request was issued while this one was in flight.
			v.mu.Unlock()
			return
		}
		if err != nil {
			v.current = HistoryView{ProblemID: problemID, Err: err}
		} else {
			v.current = HistoryView{ProblemID: problemID, Items: items}
		}
		v.mu.Unlock()
		v.notify()
	}()
}

// Close dismisses the viewer; a response from any in-flight fetch is ignored.
func (v *HistoryViewer) Close() {
	v.mu.Lock()
	v.token++
	v.current = HistoryView{}
	v.mu.Unlock()
	v.notify()
}

// View returns the current render state.
func (v *HistoryViewer) View() HistoryView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *HistoryViewer) notify() {
	if v.OnChange == nil {
		return
	}
	v.OnChange(v.View())
}
