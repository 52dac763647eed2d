package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUWarmup is the delay between priming a rate counter and its first usable read
const CPUWarmup = time.Second

var errCounterNotPrimed = errors.New("cpu counter has not been primed")

type percentFunc func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)

// CounterCPUSampler delegates to a continuously updating rate counter. The
// first read of a fresh counter is meaningless, so it must be primed once.
type CounterCPUSampler struct {
	percent percentFunc
	warmup  time.Duration
	primed  bool
}

// NewCounterCPUSampler returns a counter sampler; a nil percent uses gopsutil
func NewCounterCPUSampler(percent percentFunc) *CounterCPUSampler {
	if percent == nil {
		percent = cpu.PercentWithContext
	}
	return &CounterCPUSampler{percent: percent, warmup: CPUWarmup}
}

// CheckSource primes the counter: one discarded read, then the warm-up delay
func (s *CounterCPUSampler) CheckSource(ctx context.Context) error {
	if _, err := s.percent(ctx, 0, false); err != nil {
		return fmt.Errorf("prime cpu counter: %w", err)
	}

	timer := time.NewTimer(s.warmup)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	s.primed = true
	return nil
}

func (s *CounterCPUSampler) Sample(ctx context.Context) (float64, error) {
	if !s.primed {
		return 0, errCounterNotPrimed
	}

	values, err := s.percent(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("read cpu counter: %w", err)
	}
	if len(values) == 0 {
		return 0, errors.New("cpu counter returned no values")
	}

	return clampPercent(values[0]), nil
}

// cpuTimes holds cumulative idle and total CPU time
type cpuTimes struct {
	idle  float64
	total float64
}

type cpuTimesFunc func(ctx context.Context) (cpuTimes, error)

// DeltaCPUSampler derives utilization from two successive reads of
// cumulative CPU time counters
type DeltaCPUSampler struct {
	read cpuTimesFunc
	prev *cpuTimes
}

// NewDeltaCPUSampler returns a delta sampler; a nil read uses gopsutil
func NewDeltaCPUSampler(read cpuTimesFunc) *DeltaCPUSampler {
	if read == nil {
		read = readCPUTimes
	}
	return &DeltaCPUSampler{read: read}
}

// CheckSource performs a throwaway read without touching the baseline
func (s *DeltaCPUSampler) CheckSource(ctx context.Context) error {
	_, err := s.read(ctx)
	return err
}

// Sample returns 0 on the first call, which only records the baseline
func (s *DeltaCPUSampler) Sample(ctx context.Context) (float64, error) {
	current, err := s.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read cpu times: %w", err)
	}

	if s.prev == nil {
		s.prev = &current
		return 0, nil
	}

	usage := cpuDelta(*s.prev, current)
	s.prev = &current
	return usage, nil
}

func cpuDelta(prev, current cpuTimes) float64 {
	// total went backwards or did not move
	if current.total <= prev.total {
		return 0
	}

	totalDelta := current.total - prev.total
	// iowait is allowed to decrease, which can pull idle below its last value
	idleDelta := max(current.idle-prev.idle, 0)
	return clampPercent(100 * (totalDelta - idleDelta) / totalDelta)
}

func readCPUTimes(ctx context.Context) (cpuTimes, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpuTimes{}, err
	}
	if len(times) == 0 {
		return cpuTimes{}, errors.New("no aggregate cpu times reported")
	}
	return cpuTimesFromStat(times[0]), nil
}

func cpuTimesFromStat(t cpu.TimesStat) cpuTimes {
	idle := t.Idle + t.Iowait
	return cpuTimes{
		idle:  idle,
		total: t.User + t.Nice + t.System + idle + t.Irq + t.Softirq + t.Steal,
	}
}

var (
	topUserPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)% user`)
	topSystemPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)% sys`)
	topIdlePattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)% idle`)
)

// TopCPUSampler reads the point-in-time user and system percentages
// reported by top. No state is kept between calls.
type TopCPUSampler struct {
	run commandRunner
}

// NewTopCPUSampler returns a top-based sampler; a nil run executes the real tool
func NewTopCPUSampler(run commandRunner) *TopCPUSampler {
	if run == nil {
		run = runCommand
	}
	return &TopCPUSampler{run: run}
}

func (s *TopCPUSampler) CheckSource(ctx context.Context) error {
	_, err := s.Sample(ctx)
	return err
}

func (s *TopCPUSampler) Sample(ctx context.Context) (float64, error) {
	out, err := s.run(ctx, "top", "-l", "1", "-n", "0")
	if err != nil {
		return 0, err
	}
	return parseTopCPU(string(out))
}

// parseTopCPU extracts user+sys from a line like
// "CPU usage: 5.12% user, 10.24% sys, 84.63% idle"
func parseTopCPU(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "CPU usage:") {
			continue
		}

		user := topUserPattern.FindStringSubmatch(line)
		system := topSystemPattern.FindStringSubmatch(line)
		idle := topIdlePattern.FindStringSubmatch(line)
		if user == nil || system == nil || idle == nil {
			return 0, fmt.Errorf("incomplete top cpu line: %q", strings.TrimSpace(line))
		}

		userPct, err := strconv.ParseFloat(user[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse user percentage: %w", err)
		}
		systemPct, err := strconv.ParseFloat(system[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse sys percentage: %w", err)
		}

		return clampPercent(userPct + systemPct), nil
	}

	return 0, errors.New("no CPU usage line in top output")
}
