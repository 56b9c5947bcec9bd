package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adhocteam/coffeemin/internal/logger"
)

func TestRebuildableFilename(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/app.coffee", true},
		{"src/app.litcoffee", true},
		{"src/.app.coffee.swp", false},
		{"src/.app.coffee.swo", false},
		{"src/app.coffee~", false},
		{"src/#app.coffee#", false},
		{"src/.#app.coffee", false},
	}
	for _, tt := range tests {
		if got := rebuildableFilename(tt.path); got != tt.want {
			t.Errorf("rebuildableFilename(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file watch test in short mode")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "app.coffee")
	other := filepath.Join(dir, "other.coffee")
	for _, p := range []string{path, other} {
		if err := os.WriteFile(p, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilt := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, func(_ context.Context, p string) {
			rebuilt <- p
		}, Options{Logger: logger.Discard(), Interval: 10 * time.Millisecond})
	}()

	// keep writing until the watcher has started and seen a change
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(5 * time.Second)
	for got := ""; got == ""; {
		select {
		case got = <-rebuilt:
			if got != path {
				t.Errorf("expected rebuild of %s, got %s", path, got)
			}
		case <-tick.C:
			if err := os.WriteFile(other, []byte("y = 2\n"), 0644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("x = 2\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-timeout:
			t.Fatal("timed out waiting for rebuild")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error after cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
