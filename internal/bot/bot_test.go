package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/melvorminer/melvorminer/internal/config"
	botCtx "github.com/melvorminer/melvorminer/internal/context"
	"github.com/melvorminer/melvorminer/internal/event"
	"github.com/melvorminer/melvorminer/internal/game"
	"github.com/melvorminer/melvorminer/internal/testutil/fakehost"
	"github.com/melvorminer/melvorminer/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	primaryOre = "melvorAoD:Pure_Crystal"
	fallbackA  = "melvorTotH:Corundumite_Ore"
	fallbackB  = "melvorD:Dragonite_Ore"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		PrimaryOre:   primaryOre,
		FallbackOres: []string{fallbackA, fallbackB},
		Gloves: map[string]string{
			primaryOre: "Gem_Gloves",
			fallbackA:  "Mining_Gloves",
			fallbackB:  "Mining_Gloves",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestBot(t *testing.T, h *fakehost.Host, cfg *config.Config) (*Bot, *testlog.Sleeper) {
	t.Helper()
	sl := &testlog.Sleeper{}
	bc := botCtx.NewContext("test", cfg, h, testlog.New(t)).WithSleep(sl.Sleep, h)
	return NewBot(bc), sl
}

func ore(id string, hp, maxHP int) game.OreState {
	return game.OreState{ID: id, CurrentHP: hp, MaxHP: maxHP}
}

func minedOres(h *fakehost.Host) []string {
	var ids []string
	for _, c := range h.CommandsOf(game.CommandMine) {
		ids = append(ids, c.TargetID)
	}
	return ids
}

func TestTickSelectsFirstFallbackWhenPrimaryDepleted(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 10, 50), ore(fallbackB, 5, 50))
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	b, _ := newTestBot(t, h, testConfig())

	immediate, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.False(t, immediate)
	assert.Equal(t, []string{fallbackA}, minedOres(h))
	assert.Equal(t, MiningFallback(fallbackA), b.State())
}

func TestTickUsesPriorityOrderNotHP(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 2, 50), ore(fallbackB, 49, 50))
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	b, _ := newTestBot(t, h, testConfig())

	_, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{fallbackA}, minedOres(h))
}

func TestTickPrimaryRespawnPreemptsFallback(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 100, 100), ore(fallbackA, 40, 50))
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	b, _ := newTestBot(t, h, testConfig())
	b.state = MiningFallback(fallbackA)

	immediate, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.True(t, immediate)
	require.Len(t, h.Commands, 2)
	assert.Equal(t, game.Command{Kind: game.CommandEquip, TargetID: "Gem_Gloves"}, h.Commands[0])
	assert.Equal(t, game.Command{Kind: game.CommandMine, TargetID: primaryOre}, h.Commands[1])
	assert.Equal(t, MiningPrimary(primaryOre), b.State())
}

func TestTickDoesNotRestartPrimaryAlreadyTargeted(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 100, 100), ore(fallbackA, 40, 50))
	b, _ := newTestBot(t, h, testConfig())
	b.state = MiningPrimary(primaryOre)

	immediate, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.False(t, immediate)
	assert.Empty(t, h.Commands)
	assert.Equal(t, MiningPrimary(primaryOre), b.State())
}

func TestTickKeepsMiningLiveTarget(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 30, 100), ore(fallbackA, 1, 50), ore(fallbackB, 50, 50))
	b, _ := newTestBot(t, h, testConfig())
	b.state = MiningFallback(fallbackB)

	_, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.Empty(t, h.Commands)
	assert.Equal(t, MiningFallback(fallbackB), b.State())
}

func TestTickMovesOnWhenTargetDepleted(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 30, 100), ore(fallbackA, 0, 50), ore(fallbackB, 20, 50))
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	b, _ := newTestBot(t, h, testConfig())
	b.state = MiningFallback(fallbackA)

	_, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{fallbackB}, minedOres(h))
	assert.Empty(t, h.CommandsOf(game.CommandEquip))
	assert.Equal(t, MiningFallback(fallbackB), b.State())
}

func TestTickWaitsWhenNothingIsAvailable(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 30, 100), ore(fallbackA, 0, 50), ore(fallbackB, 0, 50))
	b, _ := newTestBot(t, h, testConfig())
	b.state = MiningPrimary(primaryOre)
	h.SetHP(primaryOre, 0)

	_, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.Empty(t, h.Commands)
	assert.Equal(t, Waiting(), b.State())
}

func TestTickRejectsInconsistentSnapshot(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 120, 100), ore(fallbackA, 10, 50))
	b, _ := newTestBot(t, h, testConfig())

	_, err := b.Tick(context.Background())

	var invalid *game.InvalidSnapshotError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, primaryOre, invalid.OreID)
	assert.Empty(t, h.Commands)
}

func TestTickMissingGearMappingIsAnError(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Gloves, fallbackA)
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 10, 50))
	b, _ := newTestBot(t, h, cfg)

	_, err := b.Tick(context.Background())

	var missing *game.MissingGearMappingError
	require.True(t, errors.As(err, &missing))
	assert.Empty(t, h.CommandsOf(game.CommandMine))
	assert.Equal(t, Idle(), b.State())
}

func TestRunStopsOnFirstTickError(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Gloves, fallbackA)
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 10, 50))
	b, sl := newTestBot(t, h, cfg)

	err := b.Run(context.Background(), nil)

	var missing *game.MissingGearMappingError
	require.True(t, errors.As(err, &missing))
	assert.True(t, IsFatal(err))
	assert.Zero(t, sl.Count())
}

func TestRunSleepsBetweenTicksAndStopsOnCancel(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 0, 50))
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())

	sl := &cancelAfterSleeper{cancel: cancel, after: 2}
	bc := botCtx.NewContext("test", cfg, h, testlog.New(t)).WithSleep(sl.Sleep, h)
	b := NewBot(bc)

	err := b.Run(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, sl.calls)
	assert.Equal(t, cfg.PollInterval.Std(), sl.last)
	assert.Len(t, h.Queries, 2)
}

func TestRunDispatchesEventsToListener(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Gloves, fallbackA)
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 10, 50))
	b, _ := newTestBot(t, h, cfg)

	var mu sync.Mutex
	var stopped []event.MiningStoppedEvent
	listener := event.NewListener(testlog.New(t))
	listener.Register(func(_ context.Context, e event.Event) error {
		if s, ok := e.(event.MiningStoppedEvent); ok {
			mu.Lock()
			stopped = append(stopped, s)
			mu.Unlock()
		}
		return nil
	})

	err := b.Run(context.Background(), listener)
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, stopped)
	last := stopped[len(stopped)-1]
	assert.Equal(t, event.StopReasonError, last.Reason)
	assert.ErrorAs(t, last.Err, new(*game.MissingGearMappingError))
}

func TestTickMinesWithCurrentGearWhenGloveIsMissing(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 10, 50))
	h.Equipped[fakehost.GloveSlot] = "Gem_Gloves"
	h.MissingItems["Mining_Gloves"] = true
	b, _ := newTestBot(t, h, testConfig())
	queuedEvents(t)

	_, err := b.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{fallbackA}, minedOres(h))
	assert.Equal(t, "Gem_Gloves", h.Equipped[fakehost.GloveSlot])
	for _, e := range queuedEvents(t) {
		_, switched := e.(event.GlovesSwitchedEvent)
		assert.False(t, switched, "unexpected glove switch event: %s", e.Message())
	}
}

func TestTickReturnsToPrimaryOnlyOnceFullyRespawned(t *testing.T) {
	h := fakehost.New(ore(primaryOre, 0, 100), ore(fallbackA, 40, 50))
	h.Equipped[fakehost.GloveSlot] = "Mining_Gloves"
	b, _ := newTestBot(t, h, testConfig())

	_, err := b.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MiningFallback(fallbackA), b.State())

	h.SetHP(primaryOre, 60)
	_, err = b.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MiningFallback(fallbackA), b.State())

	h.SetHP(primaryOre, 100)
	immediate, err := b.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, immediate)
	assert.Equal(t, MiningPrimary(primaryOre), b.State())
	assert.Equal(t, []string{fallbackA, primaryOre}, minedOres(h))
}
