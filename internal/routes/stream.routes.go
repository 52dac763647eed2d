package routes

import (
	"net/http"

	"resmon/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterStreamRoutes registers the WebSocket stream and the Prometheus scrape endpoint
func RegisterStreamRoutes(r *gin.Engine, sc *controllers.StreamController, prometheus http.Handler) {
	r.GET("/ws", sc.HandleWebSocket)
	r.GET("/prometheus", gin.WrapH(prometheus))
}
