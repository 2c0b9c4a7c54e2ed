package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/term"
)

// Format selects the slog handler
type Format string

const (
	FormatAuto    Format = "auto"
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel converts a flag value to a slog level
func ParseLevel(s string) (slog.Level, error) {
	lvl, ok := levels[strings.ToLower(s)]
	if !ok {
		return slog.LevelInfo, goerr.New("unknown log level", goerr.V("level", s))
	}
	return lvl, nil
}

// ParseFormat converts a flag value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatConsole, FormatJSON:
		return f, nil
	default:
		return FormatAuto, goerr.New("unknown log format", goerr.V("format", s))
	}
}

// New builds a logger writing to w. FormatAuto picks the colored console
// handler when w is a terminal and JSON lines otherwise.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatConsole
		}
	}

	if format == FormatConsole {
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithTimeFmt("15:04:05.000"),
			clog.WithAttrHook(clog.GoerrHook),
		))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
