// Package log builds the process-wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dotse/slug"
	slogmulti "github.com/samber/slog-multi"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// ToSlogLevel maps our levels to the equivalent slog level.
func ToSlogLevel(level Level) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ParseLevel accepts one of debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case Debug, Info, Warn, Error:
		return l, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger fans records out to w and, when file is non-nil, to file.
func NewLogger(w io.Writer, file io.Writer, level Level) *slog.Logger {
	opts := slug.HandlerOptions{
		HandlerOptions: slog.HandlerOptions{
			Level: ToSlogLevel(level),
		},
	}
	handlers := []slog.Handler{slug.NewHandler(opts, w)}
	if file != nil {
		handlers = append(handlers, slug.NewHandler(opts, file))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// MustCreateLogger creates and configures the default global log handler. Logs
// go to stderr and, if logPath is set, to that file as well.
//
// Returns a cleanup function which should be called on program shutdown.
//
// Panics on failure to open log file for writing.
func MustCreateLogger(logPath string, level Level) func() {
	closer := func() {}

	var file io.Writer
	if logPath != "" {
		logFile, errLogFile := os.Create(logPath)
		if errLogFile != nil {
			panic(fmt.Sprintf("Failed to open logfile: %v", errLogFile))
		}
		closer = func() { Closer(logFile) }
		file = logFile
	}

	slog.SetDefault(NewLogger(os.Stderr, file, level))

	return closer
}

// ErrAttr is the attribute errors are logged under.
func ErrAttr(err error) slog.Attr {
	return slog.String("error", err.Error())
}

func Closer(closer io.Closer) {
	if errClose := closer.Close(); errClose != nil {
		slog.Error("Failed to close", ErrAttr(errClose))
	}
}
