package routes

import (
	"resmon/internal/controllers"
	"resmon/internal/middleware"
	"resmon/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds the read-only status server
func NewRouter(hub *services.SnapshotHub, exporter *services.PrometheusExporter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(20), 40), logger))

	RegisterMonitorRoutes(r, controllers.NewMetricsController(hub))
	RegisterStreamRoutes(r, controllers.NewStreamController(hub, logger), exporter.Handler())

	return r
}
