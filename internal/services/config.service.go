package services

import (
	"errors"
	"fmt"
	"net"
	"math"
	"net/url"
	"strings"
	"time"

	"resmon/internal/models"

	"github.com/caarlos0/env/v11"
)

// MaxIntervalMinutes is the longest interval that still fits in a time.Duration
const MaxIntervalMinutes = int(math.MaxInt64 / int64(time.Minute))

var (
	ErrMissingChatID   = errors.New("telegram mode requires a chat id (--chat)")
	ErrInvalidInterval = errors.New("interval must be a positive number of minutes")
)

// LoadConfig reads the RESMON_* environment variables. Command-line flags
// are applied on top of the returned value.
func LoadConfig() (models.ReportingConfig, error) {
	cfg, err := env.ParseAs[models.ReportingConfig]()
	if err != nil {
		return models.ReportingConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ValidateConfig rejects configurations that must not start the loop
func ValidateConfig(cfg models.ReportingConfig) error {
	if cfg.TelegramMode() && strings.TrimSpace(cfg.ChatID) == "" {
		return ErrMissingChatID
	}

	if cfg.IntervalMinutes <= 0 || cfg.IntervalMinutes > MaxIntervalMinutes {
		return fmt.Errorf("%w: got %d, max %d", ErrInvalidInterval, cfg.IntervalMinutes, MaxIntervalMinutes)
	}

	if cfg.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
			return fmt.Errorf("invalid listen address %q: %w", cfg.Listen, err)
		}
	}

	if cfg.TelegramMode() && cfg.TelegramAPIURL != "" {
		u, err := url.Parse(cfg.TelegramAPIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid telegram api url %q", cfg.TelegramAPIURL)
		}
	}

	return nil
}
