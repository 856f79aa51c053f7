package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"gramsetu-be/models"
	authUtils "gramsetu-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Event is the discriminated payload pushed to sector subscribers.
type Event struct {
	Type         string               `json:"type"`
	ProblemID    string               `json:"problem_id"`
	Sector       models.Sector        `json:"sector"`
	Title        string               `json:"title,omitempty"`
	Status       models.ProblemStatus `json:"status,omitempty"`
	Priority     models.Priority      `json:"priority,omitempty"`
	HighPriority bool                 `json:"high_priority,omitempty"`
}

// subscriber pairs a connection with its write lock. gorilla/websocket allows
// at most one concurrent writer per connection, and broadcasts run from
// concurrent request handlers.
type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) send(payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(payload)
}

// Hub tracks sector-scoped subscriber connections and fans events out to them.
type Hub struct {
	mu      sync.Mutex
	sectors map[models.Sector]map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{sectors: make(map[models.Sector]map[*subscriber]bool)}
}

var defaultHub = NewHub()

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The portal frontend is served cross-origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Hub) add(sector models.Sector, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sectors[sector] == nil {
		h.sectors[sector] = make(map[*subscriber]bool)
	}
	h.sectors[sector][sub] = true
}

func (h *Hub) remove(sector models.Sector, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sectors[sector], sub)
}

// Broadcast sends the event to every live subscriber of its sector.
func (h *Hub) Broadcast(event Event) {
	h.BroadcastPayload(event.Sector, event)
}

// BroadcastPayload sends an arbitrary JSON payload to a sector's subscribers.
// Connections that fail the write are dropped from the registry and closed.
func (h *Hub) BroadcastPayload(sector models.Sector, payload interface{}) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.sectors[sector]))
	for sub := range h.sectors[sector] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	var dead []*subscriber
	for _, sub := range subs {
		if err := sub.send(payload); err != nil {
			dead = append(dead, sub)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, sub := range dead {
			delete(h.sectors[sector], sub)
			sub.conn.Close()
		}
		h.mu.Unlock()
	}
}

// CanSubscribe implements the sector channel policy: the healthcare channel is
// a farmer-facing alert feed, every other sector channel is officer/admin only.
func CanSubscribe(sector models.Sector, role models.UserRole) bool {
	if sector == models.Healthcare {
		return role == models.RoleFarmer
	}
	return role == models.RoleOfficer || role == models.RoleAdmin
}

// ServeWS upgrades the request and registers the connection on its sector
// channel. Authentication uses the token query parameter since browsers cannot
// set headers on WebSocket requests. Policy violations close with 1008.
func (h *Hub) ServeWS(c *gin.Context) {
	token := c.Query("token")
	sectorParam := c.Query("sector")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	closePolicy := func(reason string) {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, msg)
		conn.Close()
	}

	if token == "" || !models.ValidSector(sectorParam) {
		closePolicy("token and sector are required")
		return
	}
	_, roleStr, err := authUtils.ParseToken(token)
	if err != nil {
		closePolicy("invalid token")
		return
	}
	sector := models.Sector(sectorParam)
	if !CanSubscribe(sector, models.UserRole(roleStr)) {
		closePolicy("role may not subscribe to this sector")
		return
	}

	sub := &subscriber{conn: conn}
	h.add(sector, sub)
	defer func() {
		h.remove(sector, sub)
		conn.Close()
	}()

	// Inbound messages are ignored; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeWS handles subscriptions on the default hub.
func ServeWS(c *gin.Context) {
	defaultHub.ServeWS(c)
}

// Notify broadcasts on the default hub. Safe to call from request handlers;
// delivery is best effort.
func Notify(event Event) {
	defaultHub.Broadcast(event)
}

// NotifyPayload broadcasts an untyped payload on the default hub.
func NotifyPayload(sector models.Sector, payload interface{}) {
	defaultHub.BroadcastPayload(sector, payload)
}
