package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adhocteam/coffeemin/internal/command"
	"github.com/adhocteam/coffeemin/internal/compile"
	"github.com/adhocteam/coffeemin/internal/logger"
	"github.com/adhocteam/coffeemin/internal/minify"
	"github.com/adhocteam/coffeemin/internal/runner"
	"github.com/adhocteam/coffeemin/internal/version"
	"github.com/adhocteam/coffeemin/internal/watch"
)

// Run executes coffeemin with args (without the program name) and returns
// the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintf(stderr, "coffeemin: %s\n", exitErr.Message)
		}
		if exitErr.Code == 2 {
			fmt.Fprintf(stderr, "Run 'coffeemin --help' for usage.\n")
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "coffeemin: %v\n", err)
	return 1
}

// NewCommand returns the root command. Flags are parsed into a fresh
// Config on each execution.
func NewCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := &Config{}
	cmd := &cobra.Command{
		Use:   "coffeemin [flags] <path>...",
		Short: "Compile CoffeeScript files and print each as one line of minified JavaScript",
		Long: `coffeemin compiles each file named on the command line from CoffeeScript
to JavaScript, minifies it, and prints it to standard output on a single
line. Files that fail are reported on standard error; the others are
still printed.`,
		Version:       version.Version(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			if err := cfg.Validate(); err != nil {
				return err
			}
			return execute(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	f := cmd.Flags()
	f.BoolVar(&cfg.Unordered, "unordered", false, "print lines as files finish instead of in argument order")
	f.IntVarP(&cfg.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "maximum number of files compiled at once")
	f.StringVar(&cfg.Minifier, "minifier", minify.Esbuild, "minifier backend: esbuild or tdewolff")
	f.BoolVar(&cfg.NoMinify, "no-minify", false, "print compiled JavaScript without minifying it")
	f.BoolVarP(&cfg.Watch, "watch", "w", false, "recompile files when they change")
	f.BoolVar(&cfg.PrintAST, "print-ast", false, "pretty-print the syntax tree of each file and exit")
	f.BoolVar(&cfg.Color, "color", false, "color the --print-ast output with ANSI escapes")
	f.BoolVar(&cfg.Tokens, "tokens", false, "print the tokens of each file and exit")
	f.StringVar(&cfg.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", "text", "log format: text, json or logfmt")

	return cmd
}

func execute(ctx context.Context, cfg *Config, stdout, stderr io.Writer) error {
	log, err := logger.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return usageError("%v", err)
	}

	switch {
	case cfg.Tokens:
		return eachPath(log, cfg.Paths, func(path string) error {
			return command.PrintTokens(stdout, path)
		})
	case cfg.PrintAST:
		return eachPath(log, cfg.Paths, func(path string) error {
			return command.PrettyPrintAST(stdout, path, cfg.Color)
		})
	}

	var m runner.Minifier = minify.Passthrough{}
	if !cfg.NoMinify {
		if m, err = minify.New(cfg.Minifier); err != nil {
			return usageError("%v", err)
		}
	}
	r := &runner.Runner{
		Compiler:  compile.New(compile.DefaultOptions()),
		Minifier:  m,
		Stdout:    stdout,
		Logger:    log,
		Jobs:      cfg.Jobs,
		Unordered: cfg.Unordered,
	}

	runErr := r.Run(ctx, cfg.Paths)
	if cfg.Watch && len(cfg.Paths) > 0 {
		rebuild := func(ctx context.Context, path string) {
			// failures are logged by the runner
			_ = r.Run(ctx, []string{path})
		}
		if err := watch.Watch(ctx, cfg.Paths, rebuild, watch.Options{Logger: log}); err != nil {
			return fmt.Errorf("watching files: %w", err)
		}
	}
	return exitStatus(runErr)
}

// exitStatus maps the error of a batch to an *ExitError. Failed paths have
// already been logged.
func exitStatus(err error) error {
	var batch *runner.BatchError
	if errors.As(err, &batch) {
		return &ExitError{Code: 1}
	}
	return err
}

func eachPath(log *slog.Logger, paths []string, f func(path string) error) error {
	var failed bool
	for _, path := range paths {
		if err := f(path); err != nil {
			log.Error("failed", "path", path, "err", err)
			failed = true
		}
	}
	if failed {
		return &ExitError{Code: 1}
	}
	return nil
}
