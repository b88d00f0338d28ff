package game

import (
	"sort"
	"strings"
)

// OreState is a single rock as reported by the game on the last poll.
type OreState struct {
	ID        string `json:"id"`
	CurrentHP int    `json:"currentHP"`
	MaxHP     int    `json:"maxHP"`
}

func (o OreState) IsDepleted() bool {
	return o.CurrentHP <= 0
}

func (o OreState) IsFull() bool {
	return o.MaxHP > 0 && o.CurrentHP == o.MaxHP
}

// Validate checks the HP values are self-consistent.
func (o OreState) Validate() error {
	if o.CurrentHP < 0 || o.MaxHP <= 0 || o.CurrentHP > o.MaxHP {
		return &InvalidSnapshotError{OreID: o.ID, CurrentHP: o.CurrentHP, MaxHP: o.MaxHP}
	}

	return nil
}

// Snapshot maps the namespaced ore id (e.g. melvorD:Dragonite_Ore) to its state.
type Snapshot map[string]OreState

// Validate returns the first inconsistent ore, in id order so results are stable.
func (s Snapshot) Validate() error {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s[id].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// LocalID strips the namespace from a registry id: melvorD:Dragonite_Ore -> Dragonite_Ore.
func LocalID(id string) string {
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		return id[idx+1:]
	}

	return id
}
