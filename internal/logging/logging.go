// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "fedwatch", "logs", "fedwatch.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	// Console writer
	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stderr
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithContract adds a contract symbol to the logger context.
func WithContract(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("contract", symbol).Logger()
}

// WithMeeting adds a meeting date to the logger context.
func WithMeeting(logger zerolog.Logger, meeting time.Time) zerolog.Logger {
	return logger.With().Str("meeting", meeting.Format("2006-01-02")).Logger()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogDecode logs an implied rate decode for a contract month.
func LogDecode(logger zerolog.Logger, symbol string, price, preRate, postRate float64) {
	logger.Debug().
		Str("event", "decode").
		Str("contract", symbol).
		Float64("price", price).
		Float64("pre_rate", preRate).
		Float64("post_rate", postRate).
		Msg("Implied rate decoded")
}

// LogSolve logs a solved meeting step distribution.
func LogSolve(logger zerolog.Logger, meeting time.Time, baseRate, targetRate float64, clipped bool) {
	event := logger.Debug().
		Str("event", "solve").
		Str("meeting", meeting.Format("2006-01-02")).
		Float64("base_rate", baseRate).
		Float64("target_rate", targetRate)

	if clipped {
		event.Bool("clipped", true).Msg("Move probabilities solved with clipping")
	} else {
		event.Msg("Move probabilities solved")
	}
}

// LogPriceLookup logs a futures price lookup.
func LogPriceLookup(logger zerolog.Logger, symbol string, asOf time.Time, price float64, err error) {
	event := logger.Debug().
		Str("event", "price_lookup").
		Str("contract", symbol).
		Str("as_of", asOf.Format("2006-01-02"))

	if err != nil {
		event.Err(err).Msg("Price lookup failed")
	} else {
		event.Float64("price", price).Msg("Price lookup completed")
	}
}
