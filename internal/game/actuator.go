package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/melvorminer/melvorminer/internal/utils"
)

// Actuator issues commands into the game page.
type Actuator struct {
	host   Host
	retry  utils.RetryPolicy
	logger *slog.Logger
}

func NewActuator(host Host, retry utils.RetryPolicy, logger *slog.Logger) *Actuator {
	retry.Retryable = IsTransient
	retry.Logger = logger
	return &Actuator{host: host, retry: retry, logger: logger}
}

// MineOre clicks the rock for oreID and returns its HP before the click.
// Confirming that the HP actually drops is up to the caller.
func (a *Actuator) MineOre(ctx context.Context, oreID string) (int, error) {
	a.logger.Info("Attempting to mine ore", "ore", oreID, "localID", LocalID(oreID))

	res, err := utils.Retry(ctx, a.retry, "mine ore", func(ctx context.Context) (Result, error) {
		return a.host.IssueCommand(ctx, Command{Kind: CommandMine, TargetID: oreID})
	})
	if err != nil {
		a.logger.Error("Communication failure during mining operation", "ore", oreID, "error", err)
		return 0, err
	}

	switch res.Status {
	case StatusOK:
		return res.HP, nil
	case StatusNotFound:
		return 0, fmt.Errorf("%w: no rock with id %s", ErrTargetNotFound, oreID)
	case StatusDepleted:
		return 0, fmt.Errorf("%w: rock %s has HP %d", ErrTargetDepleted, oreID, res.HP)
	}

	return 0, &CommunicationError{Op: "mine ore", Err: fmt.Errorf("mining %s failed: %s", oreID, res.Message)}
}

// EquipItem equips itemID into the given equipment set and reports whether anything was
// equipped. A missing item is not an error: optional gear should never halt mining.
func (a *Actuator) EquipItem(ctx context.Context, itemID string, set int) (bool, error) {
	res, err := utils.Retry(ctx, a.retry, "equip item", func(ctx context.Context) (Result, error) {
		return a.host.IssueCommand(ctx, Command{Kind: CommandEquip, TargetID: itemID, Set: set})
	})
	if err != nil {
		a.logger.Error("Communication failure while equipping item", "item", itemID, "error", err)
		return false, err
	}

	switch res.Status {
	case StatusOK:
		a.logger.Info("Item equipped", "item", itemID, "set", set)
		return true, nil
	case StatusNotFound:
		a.logger.Warn("Item not found, skipping equip", "item", itemID)
		return false, nil
	}

	return false, &CommunicationError{Op: "equip item", Err: fmt.Errorf("equipping %s failed: %s", itemID, res.Message)}
}
