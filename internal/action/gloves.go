package action

import (
	"context"
	"fmt"

	"github.com/melvorminer/melvorminer/internal/action/step"
	botCtx "github.com/melvorminer/melvorminer/internal/context"
	"github.com/melvorminer/melvorminer/internal/event"
	"github.com/melvorminer/melvorminer/internal/game"
)

// SwitchGlovesIfNeeded equips the glove registered for oreID when it is not already worn.
// An ore without a registered glove is an error when gloves are required: mining it blind is
// not allowed, the caller decides what to do with it.
func SwitchGlovesIfNeeded(ctx context.Context, bc *botCtx.Context, oreID string) error {
	bc.SetLastAction("SwitchGlovesIfNeeded")

	required, found := bc.Cfg.Gloves[oreID]
	if !found || required == "" {
		if !bc.Cfg.RequireGloves() {
			bc.Logger.Debug("No glove mapping for ore, gloves not required", "ore", oreID)
			return nil
		}
		bc.Logger.Error("No mapping found for required gloves for the ore", "ore", oreID)
		return &game.MissingGearMappingError{OreID: oreID}
	}

	current, err := bc.GameReader.EquippedItem(ctx, bc.Cfg.GloveSlot)
	if err != nil {
		return fmt.Errorf("reading current glove: %w", err)
	}

	if current == required {
		bc.Logger.Info("No glove switch needed. Current glove is already appropriate.", "ore", oreID, "glove", current)
		return nil
	}

	bc.Logger.Info("Switching gloves", "ore", oreID, "current", current, "required", required)
	equipped, err := step.EquipItem(ctx, bc, required)
	if err != nil {
		return fmt.Errorf("equipping %s for %s: %w", required, oreID, err)
	}
	if !equipped {
		bc.Logger.Warn("Required glove not available, mining with current gear", "ore", oreID, "glove", required, "current", current)
		return nil
	}
	event.Send(event.GlovesSwitched(event.Text(bc.Name, fmt.Sprintf("Switched gloves to %s for %s", required, oreID)), oreID, current, required))

	return nil
}
