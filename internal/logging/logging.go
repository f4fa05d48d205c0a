// Package logging builds the process logger: JSON lines into a rotating file
// when a path is configured, text on stderr otherwise.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog with the writer it owns so callers can close the file.
type Logger struct {
	*slog.Logger
	LogFile string

	closer io.Closer
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values
// return an error and slog.LevelInfo.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

// New returns a logger writing to file (rotated by lumberjack) or, when file
// is empty, to stderr.
func New(level string, file string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return newLogger(lvl, file, os.Stderr), nil
}

func newLogger(lvl slog.Level, file string, fallback io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.TrimSpace(file) == "" {
		return &Logger{Logger: slog.New(slog.NewTextHandler(fallback, opts))}
	}

	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    16, // MB
		MaxBackups: 2,
		MaxAge:     30,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 128
	}

	l := &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, opts)),
		LogFile: w.Filename,
		closer:  w,
	}
	l.Info("logging started",
		slog.String("goos", runtime.GOOS),
		slog.String("goarch", runtime.GOARCH))
	return l
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
