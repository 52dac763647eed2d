package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"resmon/internal/log"
	"resmon/internal/models"
	"resmon/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func TestNewSinkInteractive(t *testing.T) {
	sink, interval := newSink(models.ReportingConfig{IntervalMinutes: 60}, zap.NewNop())

	assert.IsType(t, &services.ConsoleSink{}, sink)
	assert.Equal(t, services.InteractiveInterval, interval)
}

func TestNewSinkTelegram(t *testing.T) {
	sink, interval := newSink(models.ReportingConfig{
		TelegramToken:   "123:abc",
		ChatID:          "-1001",
		IntervalMinutes: 15,
	}, zap.NewNop())

	assert.IsType(t, &services.Notifier{}, sink)
	assert.Equal(t, 15*time.Minute, interval)
}

func TestNewSinkLongestInterval(t *testing.T) {
	cfg := models.ReportingConfig{
		TelegramToken:   "123:abc",
		ChatID:          "-1001",
		IntervalMinutes: services.MaxIntervalMinutes,
	}
	require.NoError(t, services.ValidateConfig(cfg))

	_, interval := newSink(cfg, zap.NewNop())
	assert.Positive(t, interval)
}

func TestQuietInteractiveLogs(t *testing.T) {
	t.Setenv("RESMON_LOG_FILE", "")
	t.Cleanup(func() { _ = log.SetLevel("info") })

	require.NoError(t, log.SetLevel("info"))
	quietInteractiveLogs(models.ReportingConfig{TelegramToken: "123:abc", ChatID: "-1"})
	assert.Equal(t, zapcore.InfoLevel, log.Level())

	quietInteractiveLogs(models.ReportingConfig{})
	assert.Equal(t, zapcore.WarnLevel, log.Level())

	require.NoError(t, log.SetLevel("debug"))
	t.Setenv("RESMON_LOG_FILE", "/tmp/resmon.log")
	quietInteractiveLogs(models.ReportingConfig{})
	assert.Equal(t, zapcore.DebugLevel, log.Level())
}

func TestWaitForShutdownTreatsCancelAsSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	cancel()
	assert.NoError(t, waitForShutdown(ctx, g, zap.NewNop()))
}

func TestWaitForShutdownReturnsGroupError(t *testing.T) {
	boom := errors.New("listener closed")
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error { return boom })

	assert.ErrorIs(t, waitForShutdown(context.Background(), g, zap.NewNop()), boom)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run(context.Background(), models.ReportingConfig{
		TelegramToken:   "123:abc",
		IntervalMinutes: 60,
		LogLevel:        "info",
	})
	require.ErrorIs(t, err, services.ErrMissingChatID)

	err = run(context.Background(), models.ReportingConfig{IntervalMinutes: 0, LogLevel: "info"})
	require.ErrorIs(t, err, services.ErrInvalidInterval)
}

func TestRootCommandRejectsBadInterval(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--interval", "soon"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}
