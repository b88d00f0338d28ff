package event

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var (
	events     = make(chan Event, 100)
	sendLogger atomic.Pointer[slog.Logger]
)

// SetLogger sets the logger Send reports dropped events to. Until it is called the
// default slog logger is used.
func SetLogger(l *slog.Logger) {
	sendLogger.Store(l)
}

func logger() *slog.Logger {
	if l := sendLogger.Load(); l != nil {
		return l
	}

	return slog.Default()
}

// Send queues an event for the listener. It never blocks the mining loop: when the queue
// is full the event is dropped.
func Send(e Event) {
	select {
	case events <- e:
	default:
		logger().Warn("Event queue full, dropping event", "message", e.Message())
	}
}

type Handler func(ctx context.Context, e Event) error

type Listener struct {
	handlers []Handler
	logger   *slog.Logger
	events   <-chan Event
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger, events: events}
}

func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Listen dispatches events to every handler until ctx is done. Handler errors are
// logged and never stop the listener. Events still queued on shutdown are flushed.
func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return nil
		case e := <-l.events:
			l.dispatch(ctx, e)
		}
	}
}

func (l *Listener) drain() {
	for {
		select {
		case e := <-l.events:
			l.dispatch(context.Background(), e)
		default:
			return
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, e Event) {
	for _, h := range l.handlers {
		if err := h(ctx, e); err != nil {
			l.logger.Error("Error running event handler", "error", err)
		}
	}
}
