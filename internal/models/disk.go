package models

// DiskUsage represents capacity information for a single fixed volume
type DiskUsage struct {
	Name            string  `json:"name"`
	TotalSize       uint64  `json:"total_size"`
	FreeSpace       uint64  `json:"free_space"`
	UsagePercentage float64 `json:"usage_percentage"`
}

// NewDiskUsage builds a DiskUsage, clamping free space to the volume size.
// A zero-sized volume reports 0% rather than dividing by zero.
func NewDiskUsage(name string, total, free uint64) DiskUsage {
	if free > total {
		free = total
	}

	usage := 0.0
	if total > 0 {
		usage = float64(total-free) / float64(total) * 100
	}

	return DiskUsage{
		Name:            name,
		TotalSize:       total,
		FreeSpace:       free,
		UsagePercentage: usage,
	}
}
