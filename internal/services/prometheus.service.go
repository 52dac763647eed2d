package services

import (
	"net/http"

	"resmon/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "resmon"

// PrometheusExporter mirrors the latest snapshot as Prometheus gauges
type PrometheusExporter struct {
	registry       *prometheus.Registry
	cpuUsage       prometheus.Gauge
	memoryUsage    prometheus.Gauge
	lastSnapshot   prometheus.Gauge
	diskUsage      *prometheus.GaugeVec
	diskTotalBytes *prometheus.GaugeVec
	diskFreeBytes  *prometheus.GaugeVec
}

// NewPrometheusExporter registers the gauges on a private registry
func NewPrometheusExporter() *PrometheusExporter {
	e := &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cpu_usage_percent",
			Help:      "Host CPU utilization in percent.",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "memory_usage_percent",
			Help:      "Host memory utilization in percent.",
		}),
		lastSnapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_snapshot_timestamp_seconds",
			Help:      "Unix time of the most recent snapshot.",
		}),
		diskUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "disk_usage_percent",
			Help:      "Fixed volume utilization in percent.",
		}, []string{"volume"}),
		diskTotalBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "disk_total_bytes",
			Help:      "Fixed volume size in bytes.",
		}, []string{"volume"}),
		diskFreeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "disk_free_bytes",
			Help:      "Fixed volume free space in bytes.",
		}, []string{"volume"}),
	}

	e.registry.MustRegister(
		e.cpuUsage,
		e.memoryUsage,
		e.lastSnapshot,
		e.diskUsage,
		e.diskTotalBytes,
		e.diskFreeBytes,
	)

	return e
}

// Publish updates every gauge; volumes missing from the snapshot are dropped
func (e *PrometheusExporter) Publish(snapshot models.MetricsSnapshot) {
	e.cpuUsage.Set(snapshot.CPUUsage)
	e.memoryUsage.Set(snapshot.MemoryUsage)
	e.lastSnapshot.Set(float64(snapshot.Timestamp.Unix()))

	e.diskUsage.Reset()
	e.diskTotalBytes.Reset()
	e.diskFreeBytes.Reset()
	for _, d := range snapshot.Disks {
		e.diskUsage.WithLabelValues(d.Name).Set(d.UsagePercentage)
		e.diskTotalBytes.WithLabelValues(d.Name).Set(float64(d.TotalSize))
		e.diskFreeBytes.WithLabelValues(d.Name).Set(float64(d.FreeSpace))
	}
}

// Handler serves the exposition format
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
