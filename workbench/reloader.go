package workbench

import (
	"context"
	"sync"
	"time"

	"gramsetu-be/models"
)

// FetchFunc loads the current sector listing.
type FetchFunc func(ctx context.Context) ([]models.Problem, error)

// DefaultDebounce is the minimum gap between event-driven reloads. Bursts of
// push events inside the window still produce notifications but only the
// first triggers a fetch, so the view is never more than one window stale.
const DefaultDebounce = 2000 * time.Millisecond

// DefaultPollInterval is the idle refresh cadence, coalesced under the same
// debounce as the event-driven triggers.
const DefaultPollInterval = 15 * time.Second

// ReloadScheduler is the single reload authority of one sector view. Push
// events, the idle poll, and mutation confirmations all funnel through it;
// each fetch carries a monotonically increasing sequence number and is
// applied through the store's stale-response guard.
type ReloadScheduler struct {
	Debounce     time.Duration
	PollInterval time.Duration
	// OnError receives fetch failures. The previously loaded list stays put.
	OnError func(error)

	store *ProblemListStore
	fetch FetchFunc

	mu         sync.Mutex
	lastReload time.Time
	seq        uint64
	baseCtx    context.Context

	now      func() time.Time
	inflight sync.WaitGroup
}

// NewReloadScheduler wires the scheduler to its store and fetch function.
func NewReloadScheduler(store *ProblemListStore, fetch FetchFunc) *ReloadScheduler {
	return &ReloadScheduler{
		Debounce:     DefaultDebounce,
		PollInterval: DefaultPollInterval,
		store:        store,
		fetch:        fetch,
		baseCtx:      context.Background(),
		now:          time.Now,
	}
}

// RequestReload asks for a reload, debounced on the leading edge: the first
// request in a quiet period fetches immediately, later ones inside the window
// are dropped.
func (r *ReloadScheduler) RequestReload() {
	r.mu.Lock()
	if r.now().Sub(r.lastReload) <= r.Debounce {
		r.mu.Unlock()
		return
	}
	r.lastReload = r.now()
	r.seq++
	seq := r.seq
	ctx := r.baseCtx
	r.mu.Unlock()

	r.launch(ctx, seq)
}

// ForceReload bypasses the debounce; used after a confirmed mutation. The
// forced fetch also resets the debounce window since the view is fresh.
func (r *ReloadScheduler) ForceReload() {
	r.mu.Lock()
	r.lastReload = r.now()
	r.seq++
	seq := r.seq
	ctx := r.baseCtx
	r.mu.Unlock()

	r.launch(ctx, seq)
}

func (r *ReloadScheduler) launch(ctx context.Context, seq uint64) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		problems, err := r.fetch(ctx)
		if err != nil {
			if r.OnError != nil {
				r.OnError(err)
			}
			return
		}
		r.store.Apply(seq, problems)
	}()
}

// Start runs the idle poll until ctx is cancelled. In-flight fetches inherit
// ctx, so cancelling the view tears them down too.
func (r *ReloadScheduler) Start(ctx context.Context) {
	r.mu.Lock()
	r.baseCtx = ctx
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(r.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RequestReload()
			}
		}
	}()
}
