package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adhocteam/coffeemin/internal/minify"
)

var errNotFound = errors.New("no such file")

// fakeCompiler returns the upper-cased path after an optional delay.
type fakeCompiler struct {
	delay map[string]time.Duration
	fail  map[string]error
}

func (c *fakeCompiler) CompileFile(ctx context.Context, path string) (string, error) {
	if err := c.fail[path]; err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	select {
	case <-time.After(c.delay[path]):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return strings.ToUpper(path) + ";\n", nil
}

type fakeMinifier struct {
	fail string
}

func (m fakeMinifier) Minify(code string) (minify.Result, error) {
	if m.fail != "" && strings.Contains(code, m.fail) {
		return minify.Result{}, &minify.Error{Backend: "fake", Message: "bad input"}
	}
	return minify.Result{Code: strings.TrimSpace(code)}, nil
}

// syncBuffer records each Write separately.
type syncBuffer struct {
	mu     sync.Mutex
	writes []string
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, string(p))
	return len(p), nil
}

func newRunner(c Compiler, m Minifier, out io.Writer, logs io.Writer) *Runner {
	return &Runner{
		Compiler: c,
		Minifier: m,
		Stdout:   out,
		Logger:   slog.New(slog.NewTextHandler(logs, nil)),
		Jobs:     4,
	}
}

func TestRunOrdered(t *testing.T) {
	c := &fakeCompiler{delay: map[string]time.Duration{
		"a": 40 * time.Millisecond,
		"b": 0,
		"c": 20 * time.Millisecond,
	}}
	out := &syncBuffer{}
	r := newRunner(c, fakeMinifier{}, out, io.Discard)

	if err := r.Run(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"A;\n", "B;\n", "C;\n"}
	if diff := cmp.Diff(want, out.writes); diff != "" {
		t.Errorf("expected output diff (-want +got):\n%s", diff)
	}
}

func TestRunUnordered(t *testing.T) {
	c := &fakeCompiler{delay: map[string]time.Duration{
		"a": 40 * time.Millisecond,
	}}
	out := &syncBuffer{}
	r := newRunner(c, fakeMinifier{}, out, io.Discard)
	r.Unordered = true

	if err := r.Run(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	if len(out.writes) != 3 || out.writes[2] != "A;\n" {
		t.Errorf("expected the slow path last, got %q", out.writes)
	}
	got := append([]string(nil), out.writes...)
	sort.Strings(got)
	if diff := cmp.Diff([]string{"A;\n", "B;\n", "C;\n"}, got); diff != "" {
		t.Errorf("expected output diff (-want +got):\n%s", diff)
	}
}

func TestRunEmpty(t *testing.T) {
	out := &syncBuffer{}
	r := newRunner(&fakeCompiler{}, fakeMinifier{}, out, io.Discard)
	if err := r.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(out.writes) != 0 {
		t.Errorf("expected no output, got %q", out.writes)
	}
}

func TestRunFailures(t *testing.T) {
	c := &fakeCompiler{fail: map[string]error{"missing": errNotFound}}
	out := &syncBuffer{}
	var logs bytes.Buffer
	r := newRunner(c, fakeMinifier{fail: "BROKEN"}, out, &logs)
	r.Jobs = 1

	err := r.Run(context.Background(), []string{"a", "missing", "broken", "b"})

	if diff := cmp.Diff([]string{"A;\n", "B;\n"}, out.writes); diff != "" {
		t.Errorf("expected output diff (-want +got):\n%s", diff)
	}

	var berr *BatchError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BatchError, got %T: %v", err, err)
	}
	var paths []string
	for _, f := range berr.Failures {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"missing", "broken"}, paths); diff != "" {
		t.Errorf("expected failed paths diff (-want +got):\n%s", diff)
	}
	if !errors.Is(err, errNotFound) {
		t.Error("expected errors.Is to find the compile error")
	}
	var merr *minify.Error
	if !errors.As(err, &merr) {
		t.Error("expected errors.As to find the minify error")
	}

	wantMsg := "2 of 4 paths failed\n\tmissing: reading file: no such file\n\tbroken: minifying with fake: bad input"
	if diff := cmp.Diff(wantMsg, err.Error()); diff != "" {
		t.Errorf("expected error message diff (-want +got):\n%s", diff)
	}

	for _, want := range []string{"path=missing", "path=broken"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected %q in logs:\n%s", want, logs.String())
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := &syncBuffer{}
	r := newRunner(&fakeCompiler{}, fakeMinifier{}, out, io.Discard)

	err := r.Run(ctx, []string{"a", "b"})
	var berr *BatchError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BatchError, got %T: %v", err, err)
	}
	if len(berr.Failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(berr.Failures))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(out.writes) != 0 {
		t.Errorf("expected no output, got %q", out.writes)
	}
}

func TestRunIdempotent(t *testing.T) {
	paths := []string{"x", "y", "z"}
	var runs [2][]string
	for i := range runs {
		out := &syncBuffer{}
		r := newRunner(&fakeCompiler{}, fakeMinifier{}, out, io.Discard)
		if err := r.Run(context.Background(), paths); err != nil {
			t.Fatal(err)
		}
		runs[i] = out.writes
	}
	if diff := cmp.Diff(runs[0], runs[1]); diff != "" {
		t.Errorf("expected identical runs (-first +second):\n%s", diff)
	}
}
