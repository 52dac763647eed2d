package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resmon/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporterPublish(t *testing.T) {
	e := NewPrometheusExporter()
	at := time.Unix(1714564800, 0).UTC()

	e.Publish(models.MetricsSnapshot{
		Timestamp:   at,
		CPUUsage:    33.5,
		MemoryUsage: 80,
		Disks: []models.DiskUsage{
			models.NewDiskUsage("/", 1000, 250),
			models.NewDiskUsage("/data", 4000, 4000),
		},
	})

	assert.Equal(t, 33.5, testutil.ToFloat64(e.cpuUsage))
	assert.Equal(t, 80.0, testutil.ToFloat64(e.memoryUsage))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(e.lastSnapshot))
	assert.Equal(t, 75.0, testutil.ToFloat64(e.diskUsage.WithLabelValues("/")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(e.diskTotalBytes.WithLabelValues("/")))
	assert.Equal(t, 4000.0, testutil.ToFloat64(e.diskFreeBytes.WithLabelValues("/data")))
	assert.Equal(t, 2, testutil.CollectAndCount(e.diskUsage))
}

func TestPrometheusExporterDropsVanishedVolumes(t *testing.T) {
	e := NewPrometheusExporter()

	e.Publish(models.MetricsSnapshot{Disks: []models.DiskUsage{
		models.NewDiskUsage("/", 100, 50),
		models.NewDiskUsage("/mnt/usb", 100, 50),
	}})
	e.Publish(models.MetricsSnapshot{Disks: []models.DiskUsage{
		models.NewDiskUsage("/", 100, 50),
	}})

	assert.Equal(t, 1, testutil.CollectAndCount(e.diskUsage))
}

func TestPrometheusExporterHandler(t *testing.T) {
	e := NewPrometheusExporter()
	e.Publish(models.MetricsSnapshot{CPUUsage: 12})

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prometheus", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "resmon_cpu_usage_percent 12")
}
