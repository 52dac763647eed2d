package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileEnvKey = "RESMON_LOG_FILE"

var atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// New builds the process logger. Output goes to stderr unless RESMON_LOG_FILE
// is set, so the interactive screen on stdout is never interleaved with logs.
func New(level string) (*zap.Logger, error) {
	if err := SetLevel(level); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if logFile := os.Getenv(logFileEnvKey); logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return logger, nil
}

// SetLevel changes the level of every logger built by New
func SetLevel(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	atomicLevel.SetLevel(lvl)

	return nil
}

// RaiseTo lifts the level to at least floor. A stricter level is kept.
func RaiseTo(floor zapcore.Level) {
	if Level() < floor {
		atomicLevel.SetLevel(floor)
	}
}

// ToFile reports whether output is redirected to RESMON_LOG_FILE
func ToFile() bool {
	return os.Getenv(logFileEnvKey) != ""
}

// Level returns the current level
func Level() zapcore.Level {
	return atomicLevel.Level()
}
