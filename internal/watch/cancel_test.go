package watch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCancellationSource(t *testing.T) {
	tests := []struct {
		name string
		// cancelChange selects which context to cancel
		cancelChange bool
		want         cancelSourceID
	}{
		{"file change", true, cancelSourceFileChange},
		{"signal", false, cancelSourceSignal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, cancelParent := context.WithCancel(context.Background())
			defer cancelParent()
			change, cancelChange := context.WithCancel(context.Background())
			defer cancelChange()

			s := newCancellationSource(parent, change)
			defer s.release()
			if s.Err() != nil || s.cancelledBy() != cancelSourceNone {
				t.Fatal("expected live context before cancel")
			}

			if tt.cancelChange {
				cancelChange()
			} else {
				cancelParent()
			}
			select {
			case <-s.Done():
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for Done")
			}
			if got := s.cancelledBy(); got != tt.want {
				t.Errorf("cancelledBy() = %v, want %v", got, tt.want)
			}
			if !errors.Is(s.Err(), context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", s.Err())
			}
		})
	}
}

func TestCancellationSourceRelease(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := newCancellationSource(parent, context.Background())
	s.release()
	s.release()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-s.Done():
		t.Error("expected Done to stay open after release")
	case <-time.After(50 * time.Millisecond):
	}
}

type ctxKey struct{}

func TestCancellationSourceValue(t *testing.T) {
	parent := context.WithValue(context.Background(), ctxKey{}, "v")
	s := newCancellationSource(parent, context.Background())
	defer s.release()
	if got := s.Value(ctxKey{}); got != "v" {
		t.Errorf("Value() = %v, want v", got)
	}
}
