package services

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

const defaultPageSize = 4096

// UsedPercent returns how much of total is not available, as a percentage.
// Reclaimable caches count as available.
func UsedPercent(total, available uint64) float64 {
	if total == 0 || available >= total {
		return 0
	}
	return float64(total-available) / float64(total) * 100
}

type virtualMemoryFunc func(ctx context.Context) (*mem.VirtualMemoryStat, error)

// VirtualMemorySampler reads total and available memory from the OS
// (MemAvailable on Linux, GlobalMemoryStatusEx on Windows)
type VirtualMemorySampler struct {
	read virtualMemoryFunc
}

// NewVirtualMemorySampler returns a sampler; a nil read uses gopsutil
func NewVirtualMemorySampler(read virtualMemoryFunc) *VirtualMemorySampler {
	if read == nil {
		read = mem.VirtualMemoryWithContext
	}
	return &VirtualMemorySampler{read: read}
}

func (s *VirtualMemorySampler) CheckSource(ctx context.Context) error {
	_, err := s.read(ctx)
	return err
}

func (s *VirtualMemorySampler) Sample(ctx context.Context) (float64, error) {
	vm, err := s.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}
	return UsedPercent(vm.Total, vm.Available), nil
}

// VMStatMemorySampler combines the hw.memsize kernel parameter with the
// free and speculative page counts from vm_stat
type VMStatMemorySampler struct {
	run commandRunner
}

// NewVMStatMemorySampler returns a sampler; a nil run executes the real tools
func NewVMStatMemorySampler(run commandRunner) *VMStatMemorySampler {
	if run == nil {
		run = runCommand
	}
	return &VMStatMemorySampler{run: run}
}

func (s *VMStatMemorySampler) CheckSource(ctx context.Context) error {
	_, err := s.Sample(ctx)
	return err
}

func (s *VMStatMemorySampler) Sample(ctx context.Context) (float64, error) {
	out, err := s.run(ctx, "sysctl", "-n", "hw.memsize")
	if err != nil {
		return 0, err
	}
	total, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hw.memsize: %w", err)
	}

	out, err = s.run(ctx, "vm_stat")
	if err != nil {
		return 0, err
	}
	available, err := parseVMStatAvailable(string(out))
	if err != nil {
		return 0, err
	}

	return UsedPercent(total, available), nil
}

// parseVMStatAvailable returns (free + speculative) pages in bytes
func parseVMStatAvailable(output string) (uint64, error) {
	pageSize := uint64(defaultPageSize)
	var free, speculative uint64
	var haveFree bool

	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := sc.Text()

		if idx := strings.Index(line, "page size of"); idx >= 0 {
			fields := strings.Fields(line[idx+len("page size of"):])
			if len(fields) > 0 {
				if v, err := strconv.ParseUint(fields[0], 10, 64); err == nil && v > 0 {
					pageSize = v
				}
			}
			continue
		}

		if v, ok := parseVMStatLine(line, "Pages free"); ok {
			free = v
			haveFree = true
		} else if v, ok := parseVMStatLine(line, "Pages speculative"); ok {
			speculative = v
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("scan vm_stat output: %w", err)
	}
	if !haveFree {
		return 0, fmt.Errorf("vm_stat output has no free page count")
	}

	return (free + speculative) * pageSize, nil
}

func parseVMStatLine(line, prefix string) (uint64, bool) {
	if !strings.HasPrefix(line, prefix+":") {
		return 0, false
	}
	value := strings.TrimSpace(strings.TrimPrefix(line, prefix+":"))
	value = strings.TrimSuffix(value, ".")
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
