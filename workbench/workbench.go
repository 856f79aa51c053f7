package workbench

import (
	"context"
	"log"

	"gramsetu-be/models"
)

// SectorWorkbench assembles the data layer of one sector view: filter state,
// list store, reload scheduler, toast queue, live listener, and the mutation
// dispatcher. Each view owns exactly one workbench.
type SectorWorkbench struct {
	Sector     models.Sector
	Filter     *FilterState
	Store      *ProblemListStore
	Queue      *NotificationQueue
	Scheduler  *ReloadScheduler
	Dispatcher *ActionDispatcher
	History    *HistoryViewer

	// Listener is nil when the session's role may not subscribe to the
	// sector channel; the view then degrades to poll-driven refresh.
	Listener *LiveListener

	client *Client
	cancel context.CancelFunc
}

// NewSectorWorkbench wires a workbench for the given sector and session.
func NewSectorWorkbench(baseURL string, sector models.Sector, session *Session) *SectorWorkbench {
	client := NewClient(baseURL, session)
	filter := NewFilterState()
	store := NewProblemListStore()

	scheduler := NewReloadScheduler(store, func(ctx context.Context) ([]models.Problem, error) {
		return client.SectorProblems(ctx, sector, filter.Params())
	})

	w := &SectorWorkbench{
		Sector:     sector,
		Filter:     filter,
		Store:      store,
		Queue:      NewNotificationQueue(0),
		Scheduler:  scheduler,
		Dispatcher: NewActionDispatcher(client, scheduler),
		History:    NewHistoryViewer(client.ProblemHistory),
		client:     client,
	}

	listener, err := NewLiveListener(ListenerConfig{
		BaseURL:   baseURL,
		Sector:    sector,
		Session:   session,
		Queue:     w.Queue,
		Scheduler: scheduler,
	})
	if err != nil {
		log.Printf("live updates unavailable for sector %s: %v", sector, err)
	} else {
		w.Listener = listener
	}

	return w
}

// Start loads the initial listing, begins the idle poll, and opens the push
// subscription when one is available.
func (w *SectorWorkbench) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.Scheduler.Start(ctx)
	w.Scheduler.ForceReload()
	if w.Listener != nil {
		w.Listener.Start(ctx)
	}
}

// ApplyFilters reloads immediately after a filter or sort change.
func (w *SectorWorkbench) ApplyFilters() {
	w.Scheduler.ForceReload()
}

// Stop releases everything the view holds: the subscription, the poll loop,
// in-flight fetches, and all toast timers.
func (w *SectorWorkbench) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.Listener != nil {
		w.Listener.Close()
	}
	w.History.Close()
	w.Queue.Stop()
}
