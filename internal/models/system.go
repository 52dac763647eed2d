package models

import "time"

// MetricsSnapshot is a single sampling tick of host utilization
type MetricsSnapshot struct {
	Timestamp   time.Time   `json:"timestamp"`
	CPUUsage    float64     `json:"cpu_usage"`
	MemoryUsage float64     `json:"memory_usage"`
	Disks       []DiskUsage `json:"disks"`
}
