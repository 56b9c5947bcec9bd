// Package logger builds the slog.Logger used for diagnostics on standard
// error.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Formats lists the accepted values for the format argument of New.
var Formats = []string{"text", "json", "logfmt"}

// New returns a logger writing to w at the given level ("debug", "info",
// "warn" or "error") in the given format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	opts := log.Options{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
		opts.ReportTimestamp = true
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
		opts.ReportTimestamp = true
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of %s", format, strings.Join(Formats, ", "))
	}

	return slog.New(log.NewWithOptions(w, opts)), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel}))
}
