package fakehost

import (
	"context"
	"sync"

	"github.com/melvorminer/melvorminer/internal/game"
)

// Host is an in-memory game.Host. Mining a rock takes MineDamage HP off it, equipping an
// item puts it into GloveSlot.
type Host struct {
	mu sync.Mutex

	Ores         game.Snapshot
	Equipped     map[string]string
	MissingItems map[string]bool
	MineDamage   int

	// QueryErrs and CommandErrs are returned, in order, before the host answers normally.
	QueryErrs   []error
	CommandErrs []error

	Queries  []game.Query
	Commands []game.Command
}

func New(ores ...game.OreState) *Host {
	h := &Host{
		Ores:         game.Snapshot{},
		Equipped:     map[string]string{},
		MissingItems: map[string]bool{},
		MineDamage:   1,
	}
	for _, o := range ores {
		h.Ores[o.ID] = o
	}

	return h
}

func (h *Host) SetHP(oreID string, hp int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	o := h.Ores[oreID]
	o.CurrentHP = hp
	h.Ores[oreID] = o
}

func (h *Host) QueryState(_ context.Context, q game.Query) (game.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Queries = append(h.Queries, q)
	if len(h.QueryErrs) > 0 {
		err := h.QueryErrs[0]
		h.QueryErrs = h.QueryErrs[1:]
		return game.State{}, err
	}

	switch q.Kind {
	case game.QueryOres:
		snap := make(game.Snapshot, len(h.Ores))
		for id, o := range h.Ores {
			snap[id] = o
		}
		return game.State{Ores: snap, Found: true}, nil
	case game.QueryEquippedItem:
		item, found := h.Equipped[q.Slot]
		return game.State{ItemID: item, Found: found}, nil
	case game.QueryOreHP:
		o, found := h.Ores[q.OreID]
		return game.State{HP: o.CurrentHP, Found: found}, nil
	}

	return game.State{}, nil
}

func (h *Host) IssueCommand(_ context.Context, cmd game.Command) (game.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Commands = append(h.Commands, cmd)
	if len(h.CommandErrs) > 0 {
		err := h.CommandErrs[0]
		h.CommandErrs = h.CommandErrs[1:]
		return game.Result{}, err
	}

	switch cmd.Kind {
	case game.CommandMine:
		o, found := h.Ores[cmd.TargetID]
		if !found {
			return game.Result{Status: game.StatusNotFound}, nil
		}
		if o.CurrentHP <= 0 {
			return game.Result{Status: game.StatusDepleted, HP: o.CurrentHP}, nil
		}
		before := o.CurrentHP
		o.CurrentHP = max(0, o.CurrentHP-h.MineDamage)
		h.Ores[cmd.TargetID] = o
		return game.Result{Status: game.StatusOK, HP: before}, nil
	case game.CommandEquip:
		if h.MissingItems[cmd.TargetID] {
			return game.Result{Status: game.StatusNotFound}, nil
		}
		h.Equipped[GloveSlot] = cmd.TargetID
		return game.Result{Status: game.StatusOK}, nil
	}

	return game.Result{Status: game.StatusFailed}, nil
}

const GloveSlot = "melvorD:Gloves"

// CommandsOf returns the recorded commands of the given kind.
func (h *Host) CommandsOf(kind game.CommandKind) []game.Command {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []game.Command
	for _, c := range h.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}

	return out
}
