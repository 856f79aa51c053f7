package workbench

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationCap bounds the queue to the most recent entries. The farmer
// alert feed and the officer workbench share this single cap.
const NotificationCap = 20

// DefaultNotificationTTL is how long a toast stays visible before it removes
// itself.
const DefaultNotificationTTL = 3500 * time.Millisecond

// Notification is one transient toast entry.
type Notification struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// NotificationQueue is an ordered, capacity-bounded toast feed, newest first.
// Every entry expires on its own timer; Dismiss removes one early without
// disturbing the expiry contract of the others.
type NotificationQueue struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries []Notification
	timers  map[string]*time.Timer
	stopped bool

	// OnChange, when set, is invoked with a snapshot after every mutation.
	OnChange func([]Notification)
}

// NewNotificationQueue returns a queue with the given expiry; ttl <= 0 uses
// DefaultNotificationTTL.
func NewNotificationQueue(ttl time.Duration) *NotificationQueue {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationQueue{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

// Push prepends a new toast and schedules its expiry. When the queue is full
// the oldest entries fall off and their timers are cancelled.
func (q *NotificationQueue) Push(text string) Notification {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return Notification{}
	}

	entry := Notification{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	q.entries = append([]Notification{entry}, q.entries...)

	for len(q.entries) > NotificationCap {
		oldest := q.entries[len(q.entries)-1]
		q.entries = q.entries[:len(q.entries)-1]
		if t, ok := q.timers[oldest.ID]; ok {
			t.Stop()
			delete(q.timers, oldest.ID)
		}
	}

	id := entry.ID
	q.timers[id] = time.AfterFunc(q.ttl, func() {
		q.Dismiss(id)
	})
	q.mu.Unlock()

	q.notify()
	return entry
}

// Dismiss removes one entry by ID, cancelling its expiry timer.
func (q *NotificationQueue) Dismiss(id string) {
	q.mu.Lock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	removed := false
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			removed = true
			break
		}
	}
	q.mu.Unlock()

	if removed {
		q.notify()
	}
}

// Entries returns the current toasts, newest first.
func (q *NotificationQueue) Entries() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

// Stop cancels all expiry timers and empties the queue. The queue accepts no
// further pushes; call when the owning view unmounts.
func (q *NotificationQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.entries = nil
}

func (q *NotificationQueue) notify() {
	if q.OnChange == nil {
		return
	}
	q.OnChange(q.Entries())
}
