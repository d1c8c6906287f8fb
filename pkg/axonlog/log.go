// Package axonlog is the process-wide logging setup shared by the
// controller and every worker process: a zerolog logger for structured
// event logging, plus a log/slog bridge for the probe package's
// per-dial instrumentation.
package axonlog

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance.
	Logger zerolog.Logger

	slogger *slog.Logger
)

// Level represents log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger.
func Init(cfg Config) {
	var level zerolog.Level
	var slogLevel slog.Level
	switch cfg.Level {
	case DebugLevel:
		level, slogLevel = zerolog.DebugLevel, slog.LevelDebug
	case InfoLevel:
		level, slogLevel = zerolog.InfoLevel, slog.LevelInfo
	case WarnLevel:
		level, slogLevel = zerolog.WarnLevel, slog.LevelWarn
	case ErrorLevel:
		level, slogLevel = zerolog.ErrorLevel, slog.LevelError
	default:
		level, slogLevel = zerolog.InfoLevel, slog.LevelInfo
	}

	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		slogger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: slogLevel}))
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		slogger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: slogLevel}))
	}
}

// Slog returns the log/slog bridge used by the probe package's
// per-attempt "probe dispatch" instrumentation. Safe to call before Init;
// returns slog.Default() in that case.
func Slog() *slog.Logger {
	if slogger == nil {
		return slog.Default()
	}
	return slogger
}

// WithComponent creates a child logger with component field.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithWorkerID creates a child logger with worker_id field, identifying
// which client or server worker process emitted the event.
func WithWorkerID(workerID string) zerolog.Logger {
	return Logger.With().Str("worker_id", workerID).Logger()
}

// WithRuleKey creates a child logger with rule_key field, identifying
// the ServerRule or ClientRule an event concerns.
func WithRuleKey(ruleKey string) zerolog.Logger {
	return Logger.With().Str("rule_key", ruleKey).Logger()
}

// WithExchange creates a child logger with exchange field, identifying
// the metrics exchange subscriber an event concerns.
func WithExchange(name string) zerolog.Logger {
	return Logger.With().Str("exchange", name).Logger()
}

// Helper functions for common logging patterns.
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
