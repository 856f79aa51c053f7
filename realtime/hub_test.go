package realtime

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gramsetu-be/models"
	authUtils "gramsetu-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanSubscribe(t *testing.T) {
	// Healthcare is the farmer-facing alert feed.
	assert.True(t, CanSubscribe(models.Healthcare, models.RoleFarmer))
	assert.False(t, CanSubscribe(models.Healthcare, models.RoleOfficer))
	assert.False(t, CanSubscribe(models.Healthcare, models.RoleAdmin))

	for _, sector := range []models.Sector{models.Agriculture, models.Infrastructure, models.Education, models.Water} {
		assert.False(t, CanSubscribe(sector, models.RoleFarmer), string(sector))
		assert.True(t, CanSubscribe(sector, models.RoleOfficer), string(sector))
		assert.True(t, CanSubscribe(sector, models.RoleAdmin), string(sector))
	}
}

func newHubServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	router := gin.New()
	router.GET("/api/ws/officer", hub.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/officer"
}

func dial(t *testing.T, wsURL, token string, sector models.Sector) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token+"&sector="+string(sector), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWSBroadcastsToSubscribers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	hub, wsURL := newHubServer(t)

	token, err := authUtils.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1", "officer")
	require.NoError(t, err)

	conn := dial(t, wsURL, token, models.Water)

	// Registration happens after the upgrade; wait for it.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.sectors[models.Water]) == 1
	}, 2*time.Second, 5*time.Millisecond)

	hub.Broadcast(Event{
		Type:      "status_changed",
		ProblemID: "68b1c2d3e4f5a6b7c8d9e0f1",
		Sector:    models.Water,
		Status:    models.StatusResolved,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "status_changed", got.Type)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, models.Water, got.Sector)
}

func TestBroadcastFromConcurrentHandlers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	hub, wsURL := newHubServer(t)

	token, err := authUtils.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1", "officer")
	require.NoError(t, err)

	conn := dial(t, wsURL, token, models.Water)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.sectors[models.Water]) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Mutations in the same sector broadcast from concurrent gin handlers;
	// every frame must still arrive intact on the shared connection.
	const writers = 8
	const perWriter = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.Broadcast(Event{
					Type:      "status_changed",
					ProblemID: "68b1c2d3e4f5a6b7c8d9e0f1",
					Sector:    models.Water,
					Status:    models.StatusResolved,
				})
			}
		}()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received := 0; received < writers*perWriter; received++ {
		var got Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "status_changed", got.Type)
		assert.Equal(t, models.StatusResolved, got.Status)
	}
	wg.Wait()

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Len(t, hub.sectors[models.Water], 1, "healthy subscriber must not be dropped")
}

func TestServeWSDoesNotCrossSectors(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	hub, wsURL := newHubServer(t)

	token, err := authUtils.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1", "officer")
	require.NoError(t, err)

	waterConn := dial(t, wsURL, token, models.Water)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.sectors[models.Water]) == 1
	}, 2*time.Second, 5*time.Millisecond)

	hub.Broadcast(Event{Type: "problem_created", ProblemID: "abc", Sector: models.Education})

	waterConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = waterConn.ReadMessage()
	assert.Error(t, err, "water subscriber must not receive education events")
}

func TestServeWSRejectsUnauthorizedRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, wsURL := newHubServer(t)

	token, err := authUtils.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1", "farmer")
	require.NoError(t, err)

	conn := dial(t, wsURL, token, models.Water)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestServeWSRejectsBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, wsURL := newHubServer(t)

	conn := dial(t, wsURL, "garbage", models.Water)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestFarmerHealthAlertChannel(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	hub, wsURL := newHubServer(t)

	token, err := authUtils.GenerateToken("68b1c2d3e4f5a6b7c8d9e0f1", "farmer")
	require.NoError(t, err)

	conn := dial(t, wsURL, token, models.Healthcare)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.sectors[models.Healthcare]) == 1
	}, 2*time.Second, 5*time.Millisecond)

	hub.BroadcastPayload(models.Healthcare, map[string]interface{}{
		"type":    "health_alert",
		"payload": map[string]interface{}{"severity": 92},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]interface{}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "health_alert", got["type"])
}
