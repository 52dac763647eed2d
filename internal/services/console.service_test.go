package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"resmon/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestRenderConsole(t *testing.T) {
	withoutColor(t)

	out := RenderConsole(models.MetricsSnapshot{
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CPUUsage:    12.5,
		MemoryUsage: 75,
		Disks: []models.DiskUsage{
			models.NewDiskUsage("C:", 500*1024*1024*1024, 125*1024*1024*1024),
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "=== Resource Monitor ===", lines[0])
	assert.Equal(t, "Timestamp: 2024-05-01T12:00:00Z", lines[1])
	assert.Equal(t, "CPU Usage: 12.50%", lines[2])
	assert.Equal(t, "Memory Usage: 75.00%", lines[3])
	assert.Equal(t, "Disk Usage:", lines[4])
	assert.Equal(t, "  C: - Used: 75.00%  Free: 125 GB / Total: 500 GB", lines[5])
}

func TestRenderConsoleNoDisks(t *testing.T) {
	withoutColor(t)

	out := RenderConsole(models.MetricsSnapshot{Disks: []models.DiskUsage{}})
	assert.Contains(t, out, "Disk Usage:\n  (no fixed volumes)\n")
}

func TestConsoleSinkClearsScreen(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	require.NoError(t, sink.Deliver(context.Background(), models.MetricsSnapshot{}))
	require.NoError(t, sink.Deliver(context.Background(), models.MetricsSnapshot{}))

	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
	assert.Equal(t, 2, strings.Count(buf.String(), clearScreen))
}
