package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"resmon/internal/log"
	"resmon/internal/models"
	"resmon/internal/routes"
	"resmon/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := services.LoadConfig()

	cmd := &cobra.Command{
		Use:   "resmon",
		Short: "Host resource monitor",
		Long: `resmon samples CPU, memory and fixed-disk usage.

Without a Telegram token it redraws a live view in the terminal every second.
With --telegram and --chat it posts a report to the chat every --interval
minutes, replacing the previous report.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				cmd.PrintErrln("Error:", envErr)
				return envErr
			}
			if err := run(cmd.Context(), cfg); err != nil {
				cmd.PrintErrln("Error:", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.TelegramToken, "telegram", "t", cfg.TelegramToken, "Telegram bot token; enables remote mode")
	flags.StringVarP(&cfg.ChatID, "chat", "c", cfg.ChatID, "Telegram chat id (required with --telegram)")
	flags.IntVarP(&cfg.IntervalMinutes, "interval", "i", cfg.IntervalMinutes, "Minutes between Telegram reports")
	flags.StringVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Serve the status API on this address (e.g. 127.0.0.1:9100)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.TelegramAPIURL, "telegram-api", cfg.TelegramAPIURL, "Telegram Bot API base URL")

	// usage errors (bad flag values included) are reported before anything starts
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln("Error:", err)
		c.PrintErrln(c.UsageString())
		return err
	})

	return cmd
}

func run(ctx context.Context, cfg models.ReportingConfig) error {
	if err := services.ValidateConfig(cfg); err != nil {
		return err
	}

	logger, err := log.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	quietInteractiveLogs(cfg)

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cpuSampler := services.NewCPUSampler(runtime.GOOS)
	memorySampler := services.NewMemorySampler(runtime.GOOS)
	if err := services.CheckSources(ctx, cpuSampler, memorySampler); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("cannot monitor this host: %w", err)
	}

	metrics := services.NewMetricsService(cpuSampler, memorySampler, services.NewDiskEnumerator(logger), logger)

	var (
		publishers []services.Publisher
		hub        *services.SnapshotHub
		server     *http.Server
		listener   net.Listener
	)
	if cfg.Listen != "" {
		hub = services.NewSnapshotHub(logger)
		exporter := services.NewPrometheusExporter()
		publishers = append(publishers, hub, exporter)

		listener, err = net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
		}
		server = &http.Server{
			Handler:           routes.NewRouter(hub, exporter, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	sink, interval := newSink(cfg, logger)
	reporter := services.NewReporter(metrics, sink, interval, logger, publishers...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reporter.Run(gctx) })

	if server != nil {
		g.Go(func() error { return hub.Run(gctx) })
		g.Go(func() error { return serveStatus(gctx, server, listener, logger) })
	}

	return waitForShutdown(ctx, g, logger)
}

// quietInteractiveLogs keeps info and debug lines off the terminal the
// interactive view redraws, unless logs are going to a file
func quietInteractiveLogs(cfg models.ReportingConfig) {
	if !cfg.TelegramMode() && !log.ToFile() {
		log.RaiseTo(zapcore.WarnLevel)
	}
}

// newSink builds the sink for the configured mode. No Telegram client exists
// in interactive mode.
func newSink(cfg models.ReportingConfig, logger *zap.Logger) (services.Sink, time.Duration) {
	if !cfg.TelegramMode() {
		logger.Info("starting interactive mode")
		return services.NewConsoleSink(os.Stdout), services.InteractiveInterval
	}

	logger.Info("starting telegram mode",
		zap.String("chat", cfg.ChatID),
		zap.Int("interval_minutes", cfg.IntervalMinutes),
	)
	client := services.NewTelegramClient(cfg.TelegramAPIURL, cfg.TelegramToken, nil)
	return services.NewNotifier(client, cfg.ChatID, logger), time.Duration(cfg.IntervalMinutes) * time.Minute
}

func serveStatus(ctx context.Context, server *http.Server, listener net.Listener, logger *zap.Logger) error {
	logger.Info("status server listening", zap.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("status server shutdown", zap.Error(err))
	}
	return nil
}

// waitForShutdown waits for the group. Once ctx is cancelled the wait is
// bounded by shutdownTimeout.
func waitForShutdown(ctx context.Context, g *errgroup.Group, logger *zap.Logger) error {
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return ignoreCanceled(err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return ignoreCanceled(err)
	case <-timer.C:
		logger.Warn("shutdown timed out", zap.Duration("timeout", shutdownTimeout))
		return nil
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
