package workbench

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/realtime"

	"github.com/gorilla/websocket"
)

// ConnState is the listener's connection lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

const (
	backoffBase = time.Second
	backoffMax  = 30 * time.Second
	// connStable is how long a connection must survive before the retry
	// delay resets; a server that accepts and immediately drops keeps
	// backing off instead of hammering every second.
	connStable = 30 * time.Second
)

// nextBackoff grows the reconnect delay, resetting to base only once a
// connection has proved stable.
func nextBackoff(current, connectedFor time.Duration) time.Duration {
	if connectedFor >= connStable {
		return backoffBase
	}
	next := current * 2
	if next > backoffMax {
		next = backoffMax
	}
	return next
}

// ListenerConfig wires a LiveListener to its view's collaborators.
type ListenerConfig struct {
	// BaseURL is the portal's HTTP base (http:// or https://); the listener
	// derives the ws:// endpoint from it.
	BaseURL   string
	Sector    models.Sector
	Session   *Session
	Queue     *NotificationQueue
	Scheduler *ReloadScheduler
	// OnState, when set, receives every connection state change; it doubles
	// as the offline indicator for the view.
	OnState func(ConnState)
}

// LiveListener maintains the sector push-channel subscription. Inbound events
// become toasts and debounced reload requests. Channel loss is retried with
// exponential backoff until the listener's context is cancelled; a missed
// event only delays a reload, it never leaves permanently stale state since
// mutations force their own reloads.
type LiveListener struct {
	cfg    ListenerConfig
	wsURL  string
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  ConnState
	conn   *websocket.Conn
	closed bool
}

// NewLiveListener validates the subscription and builds the listener. It
// refuses to construct when the session's role may not subscribe to the
// sector channel, so an unauthorized listener never dials at all.
func NewLiveListener(cfg ListenerConfig) (*LiveListener, error) {
	if cfg.Session == nil || cfg.Session.Token == "" {
		return nil, fmt.Errorf("live listener requires an authenticated session")
	}
	if !realtime.CanSubscribe(cfg.Sector, cfg.Session.Role) {
		return nil, fmt.Errorf("role %q may not subscribe to sector %q", cfg.Session.Role, cfg.Sector)
	}

	wsBase := cfg.BaseURL
	wsBase = strings.Replace(wsBase, "https://", "wss://", 1)
	wsBase = strings.Replace(wsBase, "http://", "ws://", 1)
	query := url.Values{}
	query.Set("token", cfg.Session.Token)
	query.Set("sector", string(cfg.Sector))

	return &LiveListener{
		cfg:   cfg,
		wsURL: wsBase + "/api/ws/officer?" + query.Encode(),
		state: StateDisconnected,
	}, nil
}

// State returns the current connection state.
func (l *LiveListener) State() ConnState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *LiveListener) setState(s ConnState) {
	l.mu.Lock()
	changed := l.state != s
	l.state = s
	l.mu.Unlock()
	if changed && l.cfg.OnState != nil {
		l.cfg.OnState(s)
	}
}

// Start opens the subscription and keeps it alive until Close or ctx
// cancellation.
func (l *LiveListener) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go l.run(ctx)
}

func (l *LiveListener) run(ctx context.Context) {
	defer l.wg.Done()
	defer l.setState(StateDisconnected)

	backoff := backoffBase
	for {
		if ctx.Err() != nil {
			return
		}
		l.setState(StateConnecting)

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.wsURL, nil)
		if err != nil {
			l.setState(StateDisconnected)
			if !l.sleep(ctx, jitter(backoff)) {
				return
			}
			backoff = nextBackoff(backoff, 0)
			continue
		}

		// Close may have run between the dial and here; publishing the
		// conn and checking for closure under one lock ensures either
		// Close sees the conn or we see the closure.
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			conn.Close()
			return
		}
		l.conn = conn
		l.mu.Unlock()
		l.setState(StateConnected)
		connectedAt := time.Now()

		l.readLoop(ctx, conn)

		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		l.setState(StateDisconnected)
		backoff = nextBackoff(backoff, time.Since(connectedAt))

		if !l.sleep(ctx, jitter(backoff)) {
			return
		}
	}
}

func (l *LiveListener) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		l.handleFrame(data)
	}
}

// handleFrame processes one raw channel frame. Malformed frames are logged
// and swallowed; they never produce a notification, a reload, or a teardown.
func (l *LiveListener) handleFrame(data []byte) {
	var event PushEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("dropping malformed push frame: %v", err)
		return
	}

	if l.cfg.Queue != nil {
		l.cfg.Queue.Push(event.Message())
	}
	if l.cfg.Scheduler != nil {
		l.cfg.Scheduler.RequestReload()
	}
}

func (l *LiveListener) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// Close tears the subscription down and waits for the run loop to exit. A
// blocked read does not honor context cancellation, so the connection itself
// must be closed to unblock it.
func (l *LiveListener) Close() {
	l.mu.Lock()
	l.closed = true
	cancel := l.cancel
	conn := l.conn
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	l.wg.Wait()
}

// jitter spreads reconnect attempts to avoid thundering herds after an
// outage.
func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d)/2+1))
}
