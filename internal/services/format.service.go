package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes converts a byte count into a human-readable string such as "1.5 KB"
func FormatBytes(bytes uint64) string {
	value := float64(bytes)
	order := 0
	for value >= 1024 && order < len(byteUnits)-1 {
		value /= 1024
		order++
	}

	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[order]
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// UsageLevel buckets a utilization percentage for display
type UsageLevel int

const (
	LevelLow UsageLevel = iota
	LevelNormal
	LevelWarning
	LevelCritical
)

// LevelFor maps a percentage onto its display level
func LevelFor(percent float64) UsageLevel {
	switch {
	case percent >= 90:
		return LevelCritical
	case percent >= 75:
		return LevelWarning
	case percent >= 50:
		return LevelNormal
	default:
		return LevelLow
	}
}

func (l UsageLevel) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelWarning:
		return "warning"
	case LevelNormal:
		return "normal"
	default:
		return "low"
	}
}

// Indicator returns the glyph shown next to a bar of this level
func (l UsageLevel) Indicator() string {
	switch l {
	case LevelCritical:
		return "🔴"
	case LevelWarning:
		return "🟠"
	case LevelNormal:
		return "🟡"
	default:
		return "🟢"
	}
}

const progressBarWidth = 10

// ProgressBar renders a fixed-width bar for a 0-100 value
func ProgressBar(percent float64) string {
	percent = clampPercent(percent)
	filled := int(math.Round(percent / 100 * progressBarWidth))

	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
