package services

import (
	"context"
	"time"

	"resmon/internal/models"

	"go.uber.org/zap"
)

// InteractiveInterval is the redraw cadence of the terminal view
const InteractiveInterval = time.Second

// Assembler produces one snapshot per tick
type Assembler interface {
	Assemble(ctx context.Context) models.MetricsSnapshot
}

// Sink renders or delivers a snapshot
type Sink interface {
	Deliver(ctx context.Context, snapshot models.MetricsSnapshot) error
}

// Publisher receives every snapshot in addition to the sink
type Publisher interface {
	Publish(snapshot models.MetricsSnapshot)
}

// Reporter drives the sample → deliver → wait loop
type Reporter struct {
	metrics    Assembler
	sink       Sink
	interval   time.Duration
	publishers []Publisher
	logger     *zap.Logger
}

// NewReporter builds a loop delivering to sink every interval
func NewReporter(metrics Assembler, sink Sink, interval time.Duration, logger *zap.Logger, publishers ...Publisher) *Reporter {
	return &Reporter{
		metrics:    metrics,
		sink:       sink,
		interval:   interval,
		publishers: publishers,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. Cancellation is a normal stop and
// returns nil; delivery failures are logged and never end the loop.
func (r *Reporter) Run(ctx context.Context) error {
	r.logger.Info("reporting loop started", zap.Duration("interval", r.interval))

	for {
		if ctx.Err() != nil {
			return r.stopped()
		}

		snapshot := r.metrics.Assemble(ctx)
		if ctx.Err() != nil {
			return r.stopped()
		}

		for _, p := range r.publishers {
			p.Publish(snapshot)
		}

		if err := r.sink.Deliver(ctx, snapshot); err != nil {
			if ctx.Err() != nil {
				return r.stopped()
			}
			r.logger.Error("failed to deliver snapshot", zap.Error(err))
		}

		if !sleep(ctx, r.interval) {
			return r.stopped()
		}
	}
}

func (r *Reporter) stopped() error {
	r.logger.Info("reporting loop stopped")
	return nil
}

// sleep waits for d and reports false if ctx was cancelled first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
