package bot

import (
	"context"
	"testing"
	"time"

	"github.com/melvorminer/melvorminer/internal/event"
	"github.com/melvorminer/melvorminer/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

// cancelAfterSleeper cancels the run once it has been asked to sleep `after` times.
type cancelAfterSleeper struct {
	cancel context.CancelFunc
	after  int
	calls  int
	last   time.Duration
}

func (s *cancelAfterSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls++
	s.last = d
	if s.calls >= s.after {
		s.cancel()
	}
	return ctx.Err()
}

// queuedEvents flushes the package event queue and returns what was in it.
func queuedEvents(t *testing.T) []event.Event {
	t.Helper()
	var got []event.Event
	l := event.NewListener(testlog.New(t))
	l.Register(func(_ context.Context, e event.Event) error {
		got = append(got, e)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Listen(ctx))

	return got
}
