package testlog

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// New returns a debug logger that writes through t.Log.
func New(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Sleeper records requested sleeps without blocking.
type Sleeper struct {
	mu    sync.Mutex
	Calls []time.Duration
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, d)
	s.mu.Unlock()

	return ctx.Err()
}

func (s *Sleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
