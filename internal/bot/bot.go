package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/melvorminer/melvorminer/internal/action"
	botCtx "github.com/melvorminer/melvorminer/internal/context"
	"github.com/melvorminer/melvorminer/internal/event"
	"golang.org/x/sync/errgroup"
)

// Bot runs the mining control loop. It is level triggered: each tick re-derives what to
// mine from a fresh snapshot, so a missed transition heals within one poll interval.
type Bot struct {
	ctx   *botCtx.Context
	state State
}

func NewBot(ctx *botCtx.Context) *Bot {
	return &Bot{
		ctx:   ctx,
		state: Idle(),
	}
}

func (b *Bot) State() State {
	return b.state
}

// Run mines until ctx is cancelled or a tick fails. Any tick error is fatal to the run.
// Events are dispatched in parallel by the listener, if any.
func (b *Bot) Run(ctx context.Context, listener *event.Listener) error {
	if listener == nil {
		return b.mine(ctx)
	}

	listenCtx, stopListener := context.WithCancel(context.WithoutCancel(ctx))
	defer stopListener()

	g := new(errgroup.Group)
	g.Go(func() error {
		return listener.Listen(listenCtx)
	})
	g.Go(func() error {
		defer stopListener()
		return b.mine(ctx)
	})

	return g.Wait()
}

func (b *Bot) mine(ctx context.Context) error {
	b.ctx.Logger.Info("Starting continuous mining operation.",
		"priority", b.ctx.Cfg.Ores(),
		"pollInterval", b.ctx.Cfg.PollInterval.Std(),
	)

	for {
		immediate, err := b.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return b.shutdown()
			}
			dbg := b.ctx.Debug()
			b.ctx.Logger.Error("Error during mining operation",
				"state", b.state.String(),
				"lastAction", dbg.LastAction,
				"lastStep", dbg.LastStep,
				"error", err,
			)
			event.Send(event.MiningStopped(event.Text(b.ctx.Name, "Mining stopped after an error"), event.StopReasonError, err))
			return err
		}
		if immediate {
			continue
		}

		if err := b.ctx.Sleep(ctx, b.ctx.Cfg.PollInterval.Std()); err != nil {
			return b.shutdown()
		}
	}
}

func (b *Bot) shutdown() error {
	b.ctx.Logger.Info("Mining loop interrupted, shutting down", "state", b.state.String())
	event.Send(event.MiningStopped(event.Text(b.ctx.Name, "Mining stopped"), event.StopReasonShutdown, nil))

	return nil
}

// Tick runs one poll-decide-act cycle. It returns true when the next tick should start
// right away instead of waiting for the poll interval.
func (b *Bot) Tick(ctx context.Context) (bool, error) {
	b.ctx.SetLastAction("Tick")
	cfg := b.ctx.Cfg

	ores, err := b.ctx.GameReader.FetchOreData(ctx)
	if err != nil {
		return false, fmt.Errorf("polling ore state: %w", err)
	}
	if err := ores.Validate(); err != nil {
		b.ctx.Logger.Error("Rejecting inconsistent ore snapshot", "error", err)
		return false, err
	}

	// A fully respawned primary ore preempts anything else.
	if primary, found := ores[cfg.PrimaryOre]; found && primary.IsFull() && b.state.Kind != StateMiningPrimary {
		b.ctx.Logger.Info("Primary ore respawned, switching to it",
			"ore", cfg.PrimaryOre,
			"hp", primary.CurrentHP,
			"previous", b.state.String(),
		)
		if err := b.startMining(ctx, cfg.PrimaryOre, true); err != nil {
			return false, err
		}
		return true, nil
	}

	target := b.state.Target()
	if current, found := ores[target]; target != "" && found && !current.IsDepleted() {
		b.ctx.Logger.Info("Continuing to mine", "ore", target, "hp", current.CurrentHP)
		return false, nil
	}

	if target != "" {
		b.ctx.Logger.Info("Ore depleted. Moving to next ore or waiting for respawn.", "ore", target)
		event.Send(event.OreDepleted(event.Text(b.ctx.Name, fmt.Sprintf("%s depleted", target)), target))
	}

	for _, oreID := range cfg.FallbackOres {
		if candidate, found := ores[oreID]; found && !candidate.IsDepleted() {
			b.ctx.Logger.Info("Starting mining on fallback ore", "ore", oreID, "hp", candidate.CurrentHP)
			if err := b.startMining(ctx, oreID, false); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	if b.state.Kind != StateWaiting {
		b.ctx.Logger.Info("No ore available, waiting for respawn", "previous", b.state.String())
	}
	b.state = Waiting()

	return false, nil
}

func (b *Bot) startMining(ctx context.Context, oreID string, primary bool) error {
	if err := action.SwitchGlovesIfNeeded(ctx, b.ctx, oreID); err != nil {
		return err
	}

	if _, err := action.MineOre(ctx, b.ctx, oreID, primary); err != nil {
		return err
	}

	next := MiningFallback(oreID)
	if primary {
		next = MiningPrimary(oreID)
	}
	b.ctx.Logger.Info("Controller state changed", "from", b.state.String(), "to", next.String())
	b.state = next

	return nil
}

// IsFatal reports whether err stops the run. Every tick error currently does, this only
// filters out a plain shutdown.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}
