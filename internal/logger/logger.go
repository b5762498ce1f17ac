// Package logger builds the slog loggers used by fxd: colored output for a
// terminal, plain key=value text otherwise.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Level is shared by every logger built here so --log-level can change it
// after the loggers exist.
var Level = &slog.LevelVar{}

// SetByName sets Level from a name; unknown names leave it unchanged
// and report false.
func SetByName(name string) bool {
	lvl, ok := ParseLevel(name)
	if ok {
		Level.Set(lvl)
	}
	return ok
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "err", "error":
		return slog.LevelError, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "info", "":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	}
	return slog.LevelInfo, false
}

// New returns a logger writing to stderr, colored when stderr is a terminal
func New() *slog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(NewTerminalHandler(os.Stderr))
	}
	return slog.New(NewTextHandler(os.Stderr))
}

// NewTextHandler writes key=value lines with lower-case levels
func NewTextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				return slog.String(a.Key, strings.ToLower(lvl.String()))
			}
			return a
		},
	})
}

// NewTerminalHandler writes colored lines without timestamps
func NewTerminalHandler(w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor: runtime.GOOS == "windows",
		Level:   Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
}
