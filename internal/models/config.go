package models

import "strings"

// ReportingConfig controls how and where snapshots are reported
type ReportingConfig struct {
	TelegramToken   string `env:"RESMON_TELEGRAM_TOKEN"`
	ChatID          string `env:"RESMON_TELEGRAM_CHAT"`
	IntervalMinutes int    `env:"RESMON_INTERVAL_MINUTES" envDefault:"60"`
	TelegramAPIURL  string `env:"RESMON_TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	Listen          string `env:"RESMON_LISTEN"`
	LogLevel        string `env:"RESMON_LOG_LEVEL" envDefault:"info"`
}

// TelegramMode reports whether snapshots go to a Telegram chat instead of the terminal
func (c ReportingConfig) TelegramMode() bool {
	return strings.TrimSpace(c.TelegramToken) != ""
}
