package step

import (
	"context"

	botCtx "github.com/melvorminer/melvorminer/internal/context"
)

// EquipItem equips itemID into the configured equipment set. It returns false when the
// item does not exist in the game.
func EquipItem(ctx context.Context, bc *botCtx.Context, itemID string) (bool, error) {
	bc.SetLastStep("EquipItem")

	return bc.Actuator.EquipItem(ctx, itemID, bc.Cfg.EquipmentSet)
}
