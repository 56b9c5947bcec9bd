// Package minify shrinks JavaScript. Two backends are available, esbuild
// and tdewolff/minify, plus a passthrough that leaves code unchanged.
package minify

import (
	"fmt"
	"sort"
	"strings"
)

type Result struct {
	Code string
}

// Minifier minifies a complete JavaScript program. The result has no
// trailing newline.
type Minifier interface {
	Minify(code string) (Result, error)
}

// Error is a failure reported by a minifier backend. Line and Column are
// 1-based and zero when the backend gave no position.
type Error struct {
	Backend string
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("minifying with %s: %d:%d: %s", e.Backend, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("minifying with %s: %s", e.Backend, e.Message)
}

const (
	Esbuild  = "esbuild"
	Tdewolff = "tdewolff"
)

var backends = map[string]func() Minifier{
	Esbuild:  func() Minifier { return NewEsbuild() },
	Tdewolff: func() Minifier { return NewTdewolff() },
}

// Names returns the names accepted by New, sorted.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the minifier backend called name.
func New(name string) (Minifier, error) {
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown minifier %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Passthrough returns code as is.
type Passthrough struct{}

func (Passthrough) Minify(code string) (Result, error) {
	return Result{Code: strings.TrimRight(code, "\n")}, nil
}
