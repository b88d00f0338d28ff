package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/melvorminer/melvorminer/internal/utils"
)

// GameReader reads live game state. Every call goes to the page, nothing is cached.
type GameReader struct {
	host   Host
	retry  utils.RetryPolicy
	logger *slog.Logger
}

func NewGameReader(host Host, retry utils.RetryPolicy, logger *slog.Logger) *GameReader {
	retry.Retryable = IsTransient
	retry.Logger = logger
	return &GameReader{host: host, retry: retry, logger: logger}
}

// FetchOreData returns a fresh snapshot of every tracked ore.
func (gr *GameReader) FetchOreData(ctx context.Context) (Snapshot, error) {
	st, err := utils.Retry(ctx, gr.retry, "fetch ore data", func(ctx context.Context) (State, error) {
		return gr.host.QueryState(ctx, Query{Kind: QueryOres})
	})
	if err != nil {
		gr.logger.Error("Failed to fetch ore HP", "error", err)
		return nil, err
	}
	if st.Ores == nil {
		return Snapshot{}, nil
	}

	return st.Ores, nil
}

// EquippedItem returns the local id of the item in slot, empty when the slot is empty.
func (gr *GameReader) EquippedItem(ctx context.Context, slot string) (string, error) {
	st, err := utils.Retry(ctx, gr.retry, "read equipped item", func(ctx context.Context) (State, error) {
		return gr.host.QueryState(ctx, Query{Kind: QueryEquippedItem, Slot: slot})
	})
	if err != nil {
		gr.logger.Error("Unable to get equipped item", "slot", slot, "error", err)
		return "", err
	}
	if !st.Found {
		return "", nil
	}

	return st.ItemID, nil
}

// OreHP re-reads a single rock, used to confirm a mining action had an effect.
func (gr *GameReader) OreHP(ctx context.Context, oreID string) (int, error) {
	st, err := utils.Retry(ctx, gr.retry, "read ore hp", func(ctx context.Context) (State, error) {
		return gr.host.QueryState(ctx, Query{Kind: QueryOreHP, OreID: oreID})
	})
	if err != nil {
		return 0, err
	}
	if !st.Found {
		return 0, fmt.Errorf("%w: %s", ErrTargetNotFound, oreID)
	}

	return st.HP, nil
}
