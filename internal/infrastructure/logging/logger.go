package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

// Levels beyond the four slog defines.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
)

// Logger wraps slog.Logger with service-specific functionality.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a Logger from the resolved logging configuration.
//
// It configures:
//   - JSON output with lowercase level labels (trace … fatal)
//   - Level filtering; "silent" discards everything
//   - Default fields (service name, version)
//   - A rotating file sink when cfg.Rotation is set, stdout otherwise
//
// Parameters:
//   - cfg: Logging section of the resolved configuration
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger; call Close to release a file sink
//   - error: If the rotating sink cannot be created
func New(cfg config.LoggingConfig, version string) (*Logger, error) {
	if cfg.Rotation == nil {
		return NewWithWriter(os.Stdout, cfg.Level, version), nil
	}

	w, err := NewRotatingWriter(*cfg.Rotation)
	if err != nil {
		return nil, err
	}
	l := NewWithWriter(w, cfg.Level, version)
	l.closer = w
	return l, nil
}

// NewWithWriter creates a Logger that writes JSON lines to w.
func NewWithWriter(w io.Writer, level, version string) *Logger {
	lvl, silent := parseLevel(level)
	if silent {
		w = io.Discard
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevel,
	}).WithAttrs([]slog.Attr{
		slog.String("service", "fhir-auth-service"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel converts a configured level name to slog.Level.
//
// Supported levels: trace, debug, info, warn, error, fatal, silent.
// Unrecognised names default to info.
func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace, false
	case "debug":
		return slog.LevelDebug, false
	case "warn", "warning":
		return slog.LevelWarn, false
	case "error":
		return slog.LevelError, false
	case "fatal":
		return LevelFatal, false
	case "silent":
		return LevelFatal + 1, true
	default:
		return slog.LevelInfo, false
	}
}

// replaceLevel renders the level attribute as a bare lowercase label.
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	a.Value = slog.StringValue(levelLabel(lvl))
	return a
}

func levelLabel(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "trace"
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	case l < LevelFatal:
		return "error"
	default:
		return "fatal"
	}
}

// Trace logs at trace level.
func (l *Logger) Trace(msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Fatal logs at fatal level. It does not exit; callers return an error.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Log(context.Background(), LevelFatal, msg, args...)
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	apiLogger := logger.With("component", "api")
//	apiLogger.Info("listening") // Includes component=api
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		closer: l.closer,
	}
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Default creates a default logger for use before configuration is resolved.
//
// This logger outputs to stdout in JSON format at info level.
func Default() *Logger {
	return NewWithWriter(os.Stdout, "info", "dev")
}
