package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resmon/internal/models"

	"github.com/fatih/color"
)

// clear screen and move the cursor home
const clearScreen = "\033[H\033[2J"

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	levelColors = map[UsageLevel]*color.Color{
		LevelLow:      color.New(color.FgGreen),
		LevelNormal:   color.New(color.FgYellow),
		LevelWarning:  color.New(color.FgHiRed),
		LevelCritical: color.New(color.FgRed, color.Bold),
	}
)

// ConsoleSink redraws the full terminal view on every snapshot
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink returns a sink writing to out
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) Deliver(_ context.Context, snapshot models.MetricsSnapshot) error {
	_, err := io.WriteString(c.out, clearScreen+RenderConsole(snapshot))
	return err
}

// RenderConsole formats a snapshot as the multi-line terminal view
func RenderConsole(snapshot models.MetricsSnapshot) string {
	var b strings.Builder

	headerColor.Fprintln(&b, "=== Resource Monitor ===")
	fmt.Fprintf(&b, "Timestamp: %s\n", snapshot.Timestamp.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "CPU Usage: %s\n", colorize(snapshot.CPUUsage, FormatPercent(snapshot.CPUUsage)))
	fmt.Fprintf(&b, "Memory Usage: %s\n", colorize(snapshot.MemoryUsage, FormatPercent(snapshot.MemoryUsage)))
	b.WriteString("Disk Usage:\n")

	if len(snapshot.Disks) == 0 {
		b.WriteString("  (no fixed volumes)\n")
	}
	for _, d := range snapshot.Disks {
		fmt.Fprintf(&b, "  %s - Used: %s  Free: %s / Total: %s\n",
			d.Name,
			colorize(d.UsagePercentage, FormatPercent(d.UsagePercentage)),
			FormatBytes(d.FreeSpace),
			FormatBytes(d.TotalSize),
		)
	}

	return b.String()
}

func colorize(percent float64, text string) string {
	return levelColors[LevelFor(percent)].Sprint(text)
}
