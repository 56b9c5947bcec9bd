package watch

import (
	"context"
	"sync"
	"time"
)

type cancelSourceID int

const (
	cancelSourceNone cancelSourceID = iota
	cancelSourceFileChange
	cancelSourceSignal
)

// cancellationSource implements the context.Context interface for a
// rebuild, which ends either when the input changes again or when the
// whole watch is cancelled. It records which of the two was responsible.
type cancellationSource struct {
	parent context.Context
	change context.Context
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	final cancelSourceID
	err   error
}

func newCancellationSource(parent, change context.Context) *cancellationSource {
	s := &cancellationSource{
		parent: parent,
		change: change,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *cancellationSource) run() {
	var (
		final cancelSourceID
		err   error
	)
	select {
	case <-s.change.Done():
		final, err = cancelSourceFileChange, s.change.Err()
	case <-s.parent.Done():
		final, err = cancelSourceSignal, s.parent.Err()
	case <-s.stop:
		return
	}
	s.mu.Lock()
	s.final, s.err = final, err
	s.mu.Unlock()
	close(s.done)
}

// release stops watching the underlying contexts. Done never closes after
// release unless it already had.
func (s *cancellationSource) release() {
	s.once.Do(func() { close(s.stop) })
}

// cancelledBy reports which context ended the rebuild, if any.
func (s *cancellationSource) cancelledBy() cancelSourceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}

func (s *cancellationSource) Deadline() (deadline time.Time, ok bool) {
	return s.parent.Deadline()
}

func (s *cancellationSource) Done() <-chan struct{} {
	return s.done
}

func (s *cancellationSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *cancellationSource) Value(key any) any {
	return s.parent.Value(key)
}

var _ context.Context = (*cancellationSource)(nil)
