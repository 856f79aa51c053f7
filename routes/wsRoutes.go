package routes

import (
	"gramsetu-be/realtime"

	"github.com/gin-gonic/gin"
)

// WSRoutes sets up the sector alert push channel. Auth happens inside the
// handshake since WebSocket clients cannot send an Authorization header.
func WSRoutes(r *gin.Engine) {
	r.GET("/api/ws/officer", realtime.ServeWS)
}
