// Package compile turns CoffeeScript source files into JavaScript.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/adhocteam/coffeemin/internal/codegen"
	"github.com/adhocteam/coffeemin/internal/parser"
)

// ErrSourceMapUnsupported is returned when Options.SourceMap is set.
var ErrSourceMapUnsupported = errors.New("source maps are not supported")

// Options control compilation. The zero value wraps the program in a
// function and produces no source map.
type Options struct {
	SourceMap bool
	// Bare omits the (function() { ... }).call(this) wrapper.
	Bare bool
}

// DefaultOptions returns the options used for minified output: no source
// map, no wrapper.
func DefaultOptions() Options {
	return Options{SourceMap: false, Bare: true}
}

// Compiler compiles files with a fixed set of options. It is safe for
// concurrent use.
type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// CompileFile reads and compiles the file at path. The kind of source is
// chosen by the file extension, see KindOf.
func (c *Compiler) CompileFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return c.CompileSource(path, string(text))
}

// CompileSource compiles src, using name only to pick the kind of source.
// Syntax errors wrap a *source.Error.
func (c *Compiler) CompileSource(name, src string) (string, error) {
	if c.opts.SourceMap {
		return "", ErrSourceMapUnsupported
	}

	code := Extract(KindOf(name), src)

	prog, err := parser.Parse(code)
	if err != nil {
		return "", fmt.Errorf("parsing file: %w", err)
	}

	js, err := codegen.Generate(prog, codegen.Options{Bare: c.opts.Bare})
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}

	return js, nil
}
