package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resmon/internal/models"

	"go.uber.org/zap"
)

// DiskSource lists the volumes included in a snapshot
type DiskSource interface {
	Enumerate(ctx context.Context) ([]models.DiskUsage, error)
}

// MetricsService assembles snapshots from the individual samplers
type MetricsService struct {
	cpu    Sampler
	memory Sampler
	disks  DiskSource
	logger *zap.Logger
	now    func() time.Time
}

// NewMetricsService wires the samplers into an assembler
func NewMetricsService(cpu, memory Sampler, disks DiskSource, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		cpu:    cpu,
		memory: memory,
		disks:  disks,
		logger: logger,
		now:    time.Now,
	}
}

// Assemble returns a complete snapshot. A sampler that fails or panics only
// zeroes its own field.
func (s *MetricsService) Assemble(ctx context.Context) models.MetricsSnapshot {
	snapshot := models.MetricsSnapshot{
		Timestamp: s.now().UTC(),
		Disks:     []models.DiskUsage{},
	}

	if err := isolate(func() (err error) {
		snapshot.CPUUsage, err = s.cpu.Sample(ctx)
		return err
	}); err != nil {
		s.logFault(ctx, "cpu", err)
		snapshot.CPUUsage = 0
	}

	if err := isolate(func() (err error) {
		snapshot.MemoryUsage, err = s.memory.Sample(ctx)
		return err
	}); err != nil {
		s.logFault(ctx, "memory", err)
		snapshot.MemoryUsage = 0
	}

	if err := isolate(func() error {
		disks, err := s.disks.Enumerate(ctx)
		if err != nil {
			return err
		}
		if disks != nil {
			snapshot.Disks = disks
		}
		return nil
	}); err != nil {
		s.logFault(ctx, "disk", err)
		snapshot.Disks = []models.DiskUsage{}
	}

	return snapshot
}

func (s *MetricsService) logFault(ctx context.Context, source string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		s.logger.Debug("sampling interrupted", zap.String("source", source), zap.Error(err))
		return
	}
	s.logger.Warn("failed to sample "+source+" usage", zap.String("source", source), zap.Error(err))
}

// isolate runs fn, converting a panic into an error
func isolate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sampler panic: %v", r)
		}
	}()
	return fn()
}
