package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1_572_864, "1.5 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{1_125_899_906_842_624, "1 PB"},
		{3 * 1_125_899_906_842_624 * 1024, "3072 PB"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBytes(tc.in), "FormatBytes(%d)", tc.in)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.00%", FormatPercent(0))
	assert.Equal(t, "75.50%", FormatPercent(75.5))
}

func TestLevelForBoundaries(t *testing.T) {
	assert.Equal(t, LevelLow, LevelFor(0))
	assert.Equal(t, LevelLow, LevelFor(49.99))
	assert.Equal(t, LevelNormal, LevelFor(50))
	assert.Equal(t, LevelNormal, LevelFor(74.99))
	assert.Equal(t, LevelWarning, LevelFor(75))
	assert.Equal(t, LevelWarning, LevelFor(89.99))
	assert.Equal(t, LevelCritical, LevelFor(90))
	assert.Equal(t, LevelCritical, LevelFor(100))

	assert.Equal(t, "critical", LevelCritical.String())
	assert.Equal(t, "🟢", LevelLow.Indicator())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0))
	assert.Equal(t, "█████░░░░░", ProgressBar(50))
	assert.Equal(t, "██████████", ProgressBar(100))
	assert.Equal(t, "██████████", ProgressBar(140))
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(-3))
}
