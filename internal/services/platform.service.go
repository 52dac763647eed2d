package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrSourceUnavailable marks a platform metric source that cannot be read at startup
var ErrSourceUnavailable = errors.New("metric source unavailable")

// Sampler produces one utilization percentage in [0,100] per call
type Sampler interface {
	Sample(ctx context.Context) (float64, error)
}

// sourceChecker is implemented by samplers that must verify or prime their
// source before the first tick
type sourceChecker interface {
	CheckSource(ctx context.Context) error
}

// commandRunner runs an external tool and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// NewCPUSampler picks the CPU sampling strategy for the given GOOS
func NewCPUSampler(goos string) Sampler {
	switch goos {
	case "windows":
		return NewCounterCPUSampler(nil)
	case "darwin":
		return NewTopCPUSampler(nil)
	default:
		return NewDeltaCPUSampler(nil)
	}
}

// NewMemorySampler picks the memory sampling strategy for the given GOOS
func NewMemorySampler(goos string) Sampler {
	if goos == "darwin" {
		return NewVMStatMemorySampler(nil)
	}
	return NewVirtualMemorySampler(nil)
}

// CheckSources verifies every sampler can read its source. Counter-based
// samplers are primed here, which blocks for their warm-up period.
func CheckSources(ctx context.Context, samplers ...Sampler) error {
	for _, s := range samplers {
		checker, ok := s.(sourceChecker)
		if !ok {
			continue
		}
		if err := checker.CheckSource(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}
	return nil
}
