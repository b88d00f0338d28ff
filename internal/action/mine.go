package action

import (
	"context"
	"fmt"

	botCtx "github.com/melvorminer/melvorminer/internal/context"
	"github.com/melvorminer/melvorminer/internal/event"
	"github.com/melvorminer/melvorminer/internal/game"
)

// MineOre starts mining oreID and waits for the rock HP to drop below its pre-click value.
// No decrement within the confirm window means the UI and game state are out of sync.
func MineOre(ctx context.Context, bc *botCtx.Context, oreID string, primary bool) (int, error) {
	bc.SetLastAction("MineOre")

	initialHP, err := bc.Actuator.MineOre(ctx, oreID)
	if err != nil {
		bc.Logger.Error("Failed to select and mine the specified rock", "ore", oreID, "error", err)
		return 0, err
	}

	currentHP := initialHP
	confirmed, err := WaitForCondition(ctx, bc.Sleep, func() (bool, error) {
		hp, err := bc.GameReader.OreHP(ctx, oreID)
		if err != nil {
			return false, err
		}
		currentHP = hp
		return hp < initialHP, nil
	}, bc.Cfg.ConfirmWindow.Std(), bc.Cfg.ConfirmPoll.Std())
	if err != nil {
		bc.Logger.Error("Failed to confirm mining progress", "ore", oreID, "error", err)
		return 0, fmt.Errorf("confirming mining on %s: %w", oreID, err)
	}
	if !confirmed {
		ineffective := &game.ActionIneffectiveError{OreID: oreID, InitialHP: initialHP, CurrentHP: currentHP}
		bc.Logger.Error(ineffective.Error())
		return 0, ineffective
	}

	bc.Logger.Info("Mining successful", "ore", oreID, "initialHP", initialHP, "currentHP", currentHP)
	event.Send(event.MiningStarted(event.Text(bc.Name, fmt.Sprintf("Started mining %s with HP %d", oreID, initialHP)), oreID, initialHP, primary))

	return initialHP, nil
}
