package routes

import (
	"resmon/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterMonitorRoutes(r *gin.Engine, mc *controllers.MetricsController) {
	metrics := r.Group("/metrics")
	{
		metrics.GET("/", mc.GetStatus)
		metrics.GET("/cpu", mc.GetCPU)
		metrics.GET("/memory", mc.GetMemory)
		metrics.GET("/disk", mc.GetDisk)
	}
}
