package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/melvorminer/melvorminer/internal/config"
	"github.com/melvorminer/melvorminer/internal/game"
)

// Session owns the Chrome process driving the game page.
type Session struct {
	ctx       context.Context
	cancelTab context.CancelFunc
	cancelAll context.CancelFunc
	logger    *slog.Logger
	closeOnce sync.Once
}

// Launch starts Chrome with the configured profile and opens a blank tab.
func Launch(ctx context.Context, cfg config.BrowserCfg, userDataDir string, logger *slog.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.WindowSize(1400, 900),
	)
	if userDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(userDataDir))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
		}),
	)

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("error starting browser: %w", err)
	}

	return &Session{
		ctx:       tabCtx,
		cancelTab: cancelTab,
		cancelAll: cancelAlloc,
		logger:    logger,
	}, nil
}

// Run executes chromedp actions on the game tab, honoring the caller's cancellation.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := s.derive(ctx)
	defer cancel()

	return chromedp.Run(runCtx, actions...)
}

// Evaluate implements game.Evaluator.
func (s *Session) Evaluate(ctx context.Context, script string) ([]byte, error) {
	var raw []byte
	err := s.Run(ctx, chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true)
	}))
	if err != nil {
		return nil, classify(err)
	}

	return raw, nil
}

// Close shuts down the tab and the browser process. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing the game browser.")
		s.cancelTab()
		s.cancelAll()
	})
}

func (s *Session) derive(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}
}

// Messages the DevTools protocol returns when the page navigated or reloaded under us.
var staleMessages = []string{
	"Execution context was destroyed",
	"Cannot find context with specified id",
	"Inspected target navigated or closed",
	"Cannot read properties of undefined",
	"Cannot read properties of null",
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &game.CommunicationError{Op: "evaluate", Err: err}
	}

	msg := err.Error()
	var exc *runtime.ExceptionDetails
	if errors.As(err, &exc) && exc.Exception != nil && exc.Exception.Description != "" {
		msg = exc.Exception.Description
	}

	for _, stale := range staleMessages {
		if strings.Contains(msg, stale) {
			return &game.CommunicationError{Op: "evaluate", Transient: true, Err: fmt.Errorf("%w: %s", game.ErrStaleReference, msg)}
		}
	}

	return &game.CommunicationError{Op: "evaluate", Err: err}
}
