package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/adhocteam/coffeemin/internal/logger"
	"github.com/adhocteam/coffeemin/internal/minify"
)

// ExitError is an error carrying the process exit code. An empty Message
// means the failure has already been reported.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Config is the parsed command line.
type Config struct {
	Paths     []string
	Unordered bool
	Jobs      int
	Minifier  string
	NoMinify  bool
	Watch     bool
	PrintAST  bool
	Color     bool
	Tokens    bool
	LogLevel  string
	LogFormat string
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks flag values, returning a usage *ExitError.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return usageError("invalid --jobs %d: must be at least 1", c.Jobs)
	}
	if !slices.Contains(minify.Names(), c.Minifier) {
		return usageError("invalid --minifier %q: must be one of %s", c.Minifier, strings.Join(minify.Names(), ", "))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return usageError("invalid --log-level %q: must be one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logger.Formats, strings.ToLower(c.LogFormat)) {
		return usageError("invalid --log-format %q: must be one of %s", c.LogFormat, strings.Join(logger.Formats, ", "))
	}
	if c.PrintAST && c.Tokens {
		return usageError("--print-ast and --tokens cannot be used together")
	}
	if c.Color && !c.PrintAST {
		return usageError("--color requires --print-ast")
	}
	if c.Watch && (c.PrintAST || c.Tokens) {
		return usageError("--watch cannot be used with --print-ast or --tokens")
	}
	return nil
}
