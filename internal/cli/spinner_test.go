package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerMessages(t *testing.T) {
	out := &syncBuffer{}
	s := newSpinner(context.Background(), out, "Loading members...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Rendering svg...")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Loading members...", "Rendering svg..."} {
		if !strings.Contains(got, want) {
			t.Errorf("spinner output missing %q", want)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should end on a cleared line, got tail %q", got[max(len(got)-10, 0):])
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinner(ctx, io.Discard, "waiting")
			s.Start()
			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner still running after its context ended")
			}
			if !s.done() {
				t.Error("done() = false after exit")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "stopping")
	s.Start()
	s.Stop()
	s.Stop()
	if !s.done() {
		t.Error("spinner goroutine did not exit")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "never started")
	s.Stop()
	if s.done() {
		t.Error("done() = true for a spinner that never ran")
	}
}
