// Package runner compiles and minifies a batch of files, printing one line
// of JavaScript per file.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adhocteam/coffeemin/internal/minify"
)

type Compiler interface {
	CompileFile(ctx context.Context, path string) (string, error)
}

type Minifier interface {
	Minify(code string) (minify.Result, error)
}

// Runner processes paths concurrently. Each path is compiled, then
// minified, then printed as a single line on Stdout. A failure is logged
// and recorded without stopping the other paths.
type Runner struct {
	Compiler Compiler
	Minifier Minifier
	Stdout   io.Writer
	// Logger receives one error record per failed path. Defaults to
	// slog.Default().
	Logger *slog.Logger
	// Jobs bounds the number of paths processed at once. Defaults to
	// GOMAXPROCS.
	Jobs int
	// Unordered prints lines as paths complete instead of in input order.
	Unordered bool
}

// Run processes every path and returns nil if all succeeded, otherwise a
// *BatchError. Paths not started before ctx is done fail with the context
// error.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	out := newOutput(r.Stdout, len(paths), !r.Unordered)
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			out.skip(i)
			continue
		}
		i, path := i, path
		g.Go(func() error {
			start := time.Now()
			line, err := r.Process(ctx, path)
			if err != nil {
				logger.Error("failed", "path", path, "err", err)
				errs[i] = err
				out.skip(i)
				return nil
			}
			logger.Debug("compiled", "path", path, "elapsed", time.Since(start), "bytes", len(line))
			out.line(i, line)
			return nil
		})
	}
	// goroutines never return errors, so one failure cannot cancel others
	_ = g.Wait()

	if err := out.err(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return newBatchError(paths, errs)
}

// Process compiles and minifies a single path.
func (r *Runner) Process(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	js, err := r.Compiler.CompileFile(ctx, path)
	if err != nil {
		return "", err
	}
	res, err := r.Minifier.Minify(js)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}
