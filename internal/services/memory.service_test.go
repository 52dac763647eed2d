package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsedPercent(t *testing.T) {
	assert.InDelta(t, 75.0, UsedPercent(8_000_000, 2_000_000), 1e-9)
	assert.Equal(t, 0.0, UsedPercent(0, 0))
	assert.Equal(t, 0.0, UsedPercent(1000, 1000))
	assert.Equal(t, 0.0, UsedPercent(1000, 5000))
	assert.Equal(t, 100.0, UsedPercent(1000, 0))
}

func TestVirtualMemorySampler(t *testing.T) {
	s := NewVirtualMemorySampler(func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8_000_000, Available: 2_000_000, UsedPercent: 12}, nil
	})

	usage, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 75.0, usage, 1e-9)
}

func TestVirtualMemorySamplerError(t *testing.T) {
	s := NewVirtualMemorySampler(func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("meminfo missing")
	})

	usage, err := s.Sample(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0.0, usage)
}

const vmStatOutput = `Mach Virtual Memory Statistics: (page size of 16384 bytes)
Pages free:                               10000.
Pages active:                            200000.
Pages inactive:                          190000.
Pages speculative:                         5000.
Pages throttled:                              0.
`

func TestParseVMStatAvailable(t *testing.T) {
	available, err := parseVMStatAvailable(vmStatOutput)
	require.NoError(t, err)
	assert.Equal(t, uint64(15000*16384), available)
}

func TestParseVMStatDefaultPageSize(t *testing.T) {
	available, err := parseVMStatAvailable("Pages free: 10.\n")
	require.NoError(t, err)
	assert.Equal(t, uint64(10*4096), available)
}

func TestParseVMStatMissingFree(t *testing.T) {
	_, err := parseVMStatAvailable("Pages speculative: 10.\n")
	assert.Error(t, err)
}

func TestVMStatMemorySampler(t *testing.T) {
	// total is four times the available pages
	s := NewVMStatMemorySampler(func(_ context.Context, name string, _ ...string) ([]byte, error) {
		switch name {
		case "sysctl":
			return []byte("983040000\n"), nil
		case "vm_stat":
			return []byte(vmStatOutput), nil
		}
		return nil, errors.New("unexpected command " + name)
	})

	usage, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 75.0, usage, 1e-9)
}

func TestVMStatMemorySamplerBadMemsize(t *testing.T) {
	s := NewVMStatMemorySampler(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("not a number"), nil
	})

	usage, err := s.Sample(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0.0, usage)
}
