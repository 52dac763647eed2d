package services

import (
	"context"
	"fmt"

	"resmon/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"
)

type (
	partitionsFunc func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usageFunc      func(ctx context.Context, path string) (*disk.UsageStat, error)
)

// DiskEnumerator lists fixed, ready volumes and their capacity
type DiskEnumerator struct {
	partitions partitionsFunc
	usage      usageFunc
	isFixed    func(disk.PartitionStat) bool
	logger     *zap.Logger
}

// NewDiskEnumerator returns an enumerator backed by gopsutil
func NewDiskEnumerator(logger *zap.Logger) *DiskEnumerator {
	return &DiskEnumerator{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		isFixed:    isFixedVolume,
		logger:     logger,
	}
}

// Enumerate returns one entry per fixed volume in partition-table order.
// Volumes whose usage cannot be read are treated as not ready and skipped.
func (e *DiskEnumerator) Enumerate(ctx context.Context) ([]models.DiskUsage, error) {
	partitions, err := e.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	seen := make(map[string]bool, len(partitions))
	disks := make([]models.DiskUsage, 0, len(partitions))

	for _, partition := range partitions {
		if seen[partition.Mountpoint] || !e.isFixed(partition) {
			continue
		}

		usage, err := e.usage(ctx, partition.Mountpoint)
		if err != nil {
			e.logger.Debug("skipping unreadable volume",
				zap.String("mountpoint", partition.Mountpoint),
				zap.Error(err),
			)
			continue
		}

		seen[partition.Mountpoint] = true
		disks = append(disks, models.NewDiskUsage(partition.Mountpoint, usage.Total, usage.Free))
	}

	return disks, nil
}
