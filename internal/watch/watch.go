// Package watch recompiles input files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is how long a file must stay quiet after a change
// before it is rebuilt.
const DefaultInterval = 125 * time.Millisecond

type Options struct {
	Logger   *slog.Logger
	Interval time.Duration
}

// Watch calls rebuild with an input path each time that file is created
// or written. Parent directories are watched rather than the files, so
// editors that save by renaming a new file into place are seen. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, paths []string, rebuild func(ctx context.Context, path string), opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating new fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// absolute path -> path as given on the command line
	inputs := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving path %s: %w", p, err)
		}
		inputs[abs] = p
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("adding dir %s to watch: %w", dir, err)
		}
		dirs[dir] = true
		logger.Debug("watching", "dir", dir)
	}
	logger.Info("watching for changes", "paths", len(inputs))

	b := &builder{ctx: ctx, rebuild: rebuild, logger: logger, inflight: make(map[string]*build)}
	debounceEvents(ctx, interval, watcher, logger, func(ev fsnotify.Event) {
		if !rebuildableFilename(ev.Name) {
			return
		}
		abs, err := filepath.Abs(ev.Name)
		if err != nil {
			return
		}
		path, ok := inputs[abs]
		if !ok || ctx.Err() != nil {
			return
		}
		logger.Info("change detected", "path", path)
		b.run(path)
	})
	return nil
}

// builder runs rebuilds. A change to a file cancels its rebuild if one is
// still in flight.
type builder struct {
	ctx     context.Context
	rebuild func(ctx context.Context, path string)
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]*build
}

type build struct {
	cancel context.CancelFunc
}

func (b *builder) run(path string) {
	change, cancel := context.WithCancel(context.Background())
	defer cancel()
	cur := &build{cancel: cancel}

	b.mu.Lock()
	if prev, ok := b.inflight[path]; ok {
		prev.cancel()
	}
	b.inflight[path] = cur
	b.mu.Unlock()

	src := newCancellationSource(b.ctx, change)
	defer src.release()
	b.rebuild(src, path)
	if src.cancelledBy() == cancelSourceFileChange {
		b.logger.Debug("rebuild superseded", "path", path)
	}

	b.mu.Lock()
	if b.inflight[path] == cur {
		delete(b.inflight, path)
	}
	b.mu.Unlock()
}

// rebuildableFilename tests whether a change to the file should trigger a
// rebuild. It ignores temporary files from editors like vim and Emacs.
func rebuildableFilename(path string) bool {
	ext := filepath.Ext(path)
	// ignore vim swap files: .swp, .swo, .swn, etc
	if len(ext) == 4 && strings.HasPrefix(ext, ".sw") {
		return false
	}
	// ignore vim and Emacs backup files
	if strings.HasSuffix(path, "~") {
		return false
	}
	// ignore Emacs autosave and lock files
	base := filepath.Base(path)
	if strings.HasPrefix(base, "#") || strings.HasPrefix(base, ".#") {
		return false
	}
	return true
}

// debounceEvents calls fn for a file once no create or write event has
// arrived for it within interval.
func debounceEvents(ctx context.Context, interval time.Duration, watcher *fsnotify.Watcher, logger *slog.Logger, fn func(event fsnotify.Event)) {
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	has := func(ev fsnotify.Event, op fsnotify.Op) bool {
		return ev.Op&op == op
	}

	for {
		select {
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watch error", "err", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !has(ev, fsnotify.Create) && !has(ev, fsnotify.Write) {
				continue
			}
			mu.Lock()
			t, ok := timers[ev.Name]
			if !ok {
				t = time.AfterFunc(math.MaxInt64, func() {
					mu.Lock()
					delete(timers, ev.Name)
					mu.Unlock()
					fn(ev)
				})
				t.Stop()
				timers[ev.Name] = t
			}
			t.Reset(interval)
			mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
