package workbench

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gramsetu-be/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListenerFixture(t *testing.T) (*LiveListener, *NotificationQueue, *atomic.Int64) {
	t.Helper()
	queue := NewNotificationQueue(time.Minute)
	t.Cleanup(queue.Stop)

	var fetches atomic.Int64
	store := NewProblemListStore()
	sched := NewReloadScheduler(store, func(ctx context.Context) ([]models.Problem, error) {
		fetches.Add(1)
		return nil, nil
	})

	l, err := NewLiveListener(ListenerConfig{
		BaseURL:   "http://backend.test",
		Sector:    models.Water,
		Session:   NewSession("token", models.RoleOfficer, nil),
		Queue:     queue,
		Scheduler: sched,
	})
	require.NoError(t, err)
	return l, queue, &fetches
}

func TestNewLiveListenerRejectsUnauthorizedRole(t *testing.T) {
	_, err := NewLiveListener(ListenerConfig{
		BaseURL: "http://backend.test",
		Sector:  models.Water,
		Session: NewSession("token", models.RoleFarmer, nil),
	})
	assert.Error(t, err)

	_, err = NewLiveListener(ListenerConfig{
		BaseURL: "http://backend.test",
		Sector:  models.Water,
		Session: NewSession("", models.RoleOfficer, nil),
	})
	assert.Error(t, err)

	// Farmers get the healthcare alert channel, not the officer channels.
	_, err = NewLiveListener(ListenerConfig{
		BaseURL: "http://backend.test",
		Sector:  models.Healthcare,
		Session: NewSession("token", models.RoleFarmer, nil),
	})
	assert.NoError(t, err)
}

func TestListenerDerivesWebsocketURL(t *testing.T) {
	l, _, _ := newListenerFixture(t)
	assert.Contains(t, l.wsURL, "ws://backend.test/api/ws/officer?")
	assert.Contains(t, l.wsURL, "sector=water")
	assert.Contains(t, l.wsURL, "token=token")
}

func TestHandleFrameProducesToastAndReload(t *testing.T) {
	l, queue, fetches := newListenerFixture(t)

	l.handleFrame([]byte(`{"type":"status_changed","problem_id":42,"status":"Resolved"}`))

	entries := queue.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Problem #42 status: Resolved", entries[0].Text)
	assert.Eventually(t, func() bool { return fetches.Load() == 1 }, waitLong, waitTick)
}

func TestHandleFrameNewProblemToastText(t *testing.T) {
	l, queue, _ := newListenerFixture(t)

	l.handleFrame([]byte(`{"type":"problem_created","problem_id":7,"title":"Leak","priority":"high"}`))

	entries := queue.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "New problem reported: #7 Leak (High Priority)", entries[0].Text)
}

func TestHandleFrameSwallowsMalformedPayload(t *testing.T) {
	l, queue, fetches := newListenerFixture(t)

	l.handleFrame([]byte(`{"type": "status_changed",`))
	l.handleFrame([]byte(`not json at all`))

	assert.Empty(t, queue.Entries())
	assert.Equal(t, int64(0), fetches.Load())

	// The listener still processes the next well-formed frame.
	l.handleFrame([]byte(`{"type":"problem_escalated","problem_id":"abc"}`))
	require.Len(t, queue.Entries(), 1)
	assert.Equal(t, "Problem #abc escalated", queue.Entries()[0].Text)
}

func TestCloseUnblocksSilentConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	upgraded := make(chan struct{})
	hold := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		close(upgraded)
		<-hold // keep the socket open without ever sending a frame
	}))
	defer server.Close()
	defer close(hold)

	queue := NewNotificationQueue(time.Minute)
	defer queue.Stop()
	sched := NewReloadScheduler(NewProblemListStore(), func(ctx context.Context) ([]models.Problem, error) {
		return nil, nil
	})

	l, err := NewLiveListener(ListenerConfig{
		BaseURL:   server.URL,
		Sector:    models.Water,
		Session:   NewSession("token", models.RoleOfficer, nil),
		Queue:     queue,
		Scheduler: sched,
	})
	require.NoError(t, err)

	l.Start(context.Background())
	<-upgraded

	// Unmounting right after the dial must tear the subscription down even
	// though the healthy socket never delivers a read error on its own.
	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return; listener goroutine leaked on a silent connection")
	}
	assert.Equal(t, StateDisconnected, l.State())
}

func TestNextBackoffGrowsUntilStable(t *testing.T) {
	backoff := backoffBase
	var seen []time.Duration
	for i := 0; i < 7; i++ {
		backoff = nextBackoff(backoff, 0)
		seen = append(seen, backoff)
	}
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
		30 * time.Second, 30 * time.Second, 30 * time.Second,
	}, seen)

	// A connection that dies right after the handshake must not reset the
	// delay; one that survived the stability window does.
	assert.Equal(t, 16*time.Second, nextBackoff(8*time.Second, 2*time.Second))
	assert.Equal(t, backoffBase, nextBackoff(30*time.Second, connStable))
	assert.Equal(t, backoffBase, nextBackoff(30*time.Second, time.Minute))
}

func TestListenerReceivesFramesOverWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ws/officer", r.URL.Path)
		assert.Equal(t, "water", r.URL.Query().Get("sector"))
		assert.Equal(t, "token", r.URL.Query().Get("token"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	defer server.Close()
	defer close(frames)

	queue := NewNotificationQueue(time.Minute)
	defer queue.Stop()

	var fetches atomic.Int64
	sched := NewReloadScheduler(NewProblemListStore(), func(ctx context.Context) ([]models.Problem, error) {
		fetches.Add(1)
		return nil, nil
	})

	var stateMu sync.Mutex
	var states []ConnState
	l, err := NewLiveListener(ListenerConfig{
		BaseURL:   server.URL,
		Sector:    models.Water,
		Session:   NewSession("token", models.RoleOfficer, nil),
		Queue:     queue,
		Scheduler: sched,
		OnState: func(s ConnState) {
			stateMu.Lock()
			states = append(states, s)
			stateMu.Unlock()
		},
	})
	require.NoError(t, err)

	l.Start(context.Background())
	defer l.Close()

	assert.Eventually(t, func() bool { return l.State() == StateConnected }, waitLong, waitTick)

	frames <- `{"type":"status_changed","problem_id":42,"status":"Resolved"}`

	assert.Eventually(t, func() bool { return len(queue.Entries()) == 1 }, waitLong, waitTick)
	assert.Equal(t, "Problem #42 status: Resolved", queue.Entries()[0].Text)
	assert.Eventually(t, func() bool { return fetches.Load() == 1 }, waitLong, waitTick)

	stateMu.Lock()
	defer stateMu.Unlock()
	assert.Contains(t, states, StateConnecting)
	assert.Contains(t, states, StateConnected)
}
