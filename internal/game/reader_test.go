package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/melvorminer/melvorminer/internal/game"
	"github.com/melvorminer/melvorminer/internal/testutil/fakehost"
	"github.com/melvorminer/melvorminer/internal/testutil/testlog"
	"github.com/melvorminer/melvorminer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staleErr() error {
	return &game.CommunicationError{Op: "query ores", Transient: true, Err: game.ErrStaleReference}
}

func newReader(t *testing.T, h game.Host, sl *testlog.Sleeper) *game.GameReader {
	return game.NewGameReader(h, utils.RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: sl.Sleep}, testlog.New(t))
}

func TestFetchOreDataRetriesStaleReferenceExactlyThreeTimes(t *testing.T) {
	h := fakehost.New(game.OreState{ID: "a", CurrentHP: 1, MaxHP: 1})
	h.QueryErrs = []error{staleErr(), staleErr(), staleErr(), staleErr()}
	sl := &testlog.Sleeper{}

	_, err := newReader(t, h, sl).FetchOreData(context.Background())

	require.ErrorIs(t, err, game.ErrStaleReference)
	assert.Len(t, h.Queries, 3)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sl.Calls)
}

func TestFetchOreDataRecoversFromStaleReference(t *testing.T) {
	h := fakehost.New(game.OreState{ID: "a", CurrentHP: 4, MaxHP: 9})
	h.QueryErrs = []error{staleErr()}
	sl := &testlog.Sleeper{}

	snap, err := newReader(t, h, sl).FetchOreData(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, snap["a"].CurrentHP)
	assert.Len(t, h.Queries, 2)
}

func TestFetchOreDataDoesNotRetryPermanentErrors(t *testing.T) {
	h := fakehost.New()
	h.QueryErrs = []error{&game.CommunicationError{Op: "query ores", Err: errors.New("browser gone")}}
	sl := &testlog.Sleeper{}

	_, err := newReader(t, h, sl).FetchOreData(context.Background())

	require.Error(t, err)
	assert.Len(t, h.Queries, 1)
	assert.Zero(t, sl.Count())
}

func TestFetchOreDataReturnsFreshSnapshots(t *testing.T) {
	h := fakehost.New(game.OreState{ID: "a", CurrentHP: 4, MaxHP: 9})
	r := newReader(t, h, &testlog.Sleeper{})

	first, err := r.FetchOreData(context.Background())
	require.NoError(t, err)
	h.SetHP("a", 2)
	second, err := r.FetchOreData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, first["a"].CurrentHP)
	assert.Equal(t, 2, second["a"].CurrentHP)
}

func TestEquippedItemAndOreHP(t *testing.T) {
	h := fakehost.New(game.OreState{ID: "a", CurrentHP: 4, MaxHP: 9})
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	r := newReader(t, h, &testlog.Sleeper{})

	item, err := r.EquippedItem(context.Background(), fakehost.GloveSlot)
	require.NoError(t, err)
	assert.Equal(t, "Mining_Gloves", item)

	item, err = r.EquippedItem(context.Background(), "melvorD:Helmet")
	require.NoError(t, err)
	assert.Empty(t, item)

	hp, err := r.OreHP(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 4, hp)

	_, err = r.OreHP(context.Background(), "missing")
	assert.ErrorIs(t, err, game.ErrTargetNotFound)
}
