package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogging configures the global zerolog logger.
var once sync.Once

func InitLogging(level, logFilePath string) {
	once.Do(func() {
		var writers []io.Writer
		writers = append(writers, os.Stdout)

		if logFilePath != "" {
			if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
				// We can't use the logger yet, so just print to stderr
				os.Stderr.WriteString("Failed to prepare log directory: " + err.Error() + "\n")
			} else {
				writers = append(writers, &lumberjack.Logger{
					Filename:   logFilePath,
					MaxSize:    DefaultMaxSizeMB,
					MaxBackups: DefaultMaxBackups,
					MaxAge:     DefaultMaxAgeDays,
					Compress:   true,
				})
			}
		}

		SetOutput(zerolog.MultiLevelWriter(writers...), ParseLevel(level))
	})
}

// SetOutput replaces the global logger. Tests use it to capture output.
func SetOutput(w io.Writer, level zerolog.Level) {
	logger := zerolog.New(w).With().Timestamp().Logger().Level(level)
	globalLogger = logger
	// Set the global logger used by the zerolog/log package for convenience.
	log.Logger = logger
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithLogger returns a new context containing the logger with additional fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the zerolog logger from the context, falling back to the global logger.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	// zerolog.Ctx returns a disabled logger if none is in context
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

// DebugLog logs a debug level message.
func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

// InfoLog logs an info level message.
func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

// WarnLog logs a warning level message.
func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs an error level message.
func ErrorLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Error().Msgf(msg, args...)
}

// ErrorLogErr logs an error level message with err as the structured
// "error" field.
func ErrorLogErr(ctx context.Context, err error, msg string, args ...interface{}) {
	getLogger(ctx).Error().Err(err).Msgf(msg, args...)
}

// OpError logs a failed operation with its name as a structured field.
func OpError(ctx context.Context, op string, err error) {
	getLogger(ctx).Error().Str("op", op).Err(err).Msg("data access failed")
}
