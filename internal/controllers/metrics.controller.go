package controllers

import (
	"net/http"

	"resmon/internal/models"

	"github.com/gin-gonic/gin"
)

// SnapshotSource exposes the most recent snapshot
type SnapshotSource interface {
	Latest() (models.MetricsSnapshot, bool)
}

// MetricsController serves the latest snapshot published by the reporting loop
type MetricsController struct {
	source SnapshotSource
}

func NewMetricsController(source SnapshotSource) *MetricsController {
	return &MetricsController{source: source}
}

// GetStatus returns the complete snapshot
func (mc *MetricsController) GetStatus(c *gin.Context) {
	snapshot, ok := mc.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (mc *MetricsController) GetCPU(c *gin.Context) {
	snapshot, ok := mc.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timestamp": snapshot.Timestamp,
		"cpu_usage": snapshot.CPUUsage,
	})
}

func (mc *MetricsController) GetMemory(c *gin.Context) {
	snapshot, ok := mc.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timestamp":    snapshot.Timestamp,
		"memory_usage": snapshot.MemoryUsage,
	})
}

func (mc *MetricsController) GetDisk(c *gin.Context) {
	snapshot, ok := mc.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timestamp": snapshot.Timestamp,
		"disks":     snapshot.Disks,
	})
}

func (mc *MetricsController) latest(c *gin.Context) (models.MetricsSnapshot, bool) {
	snapshot, ok := mc.source.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot collected yet"})
		return models.MetricsSnapshot{}, false
	}
	return snapshot, true
}
