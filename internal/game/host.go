package game

import "context"

type QueryKind int

const (
	QueryOres QueryKind = iota
	QueryEquippedItem
	QueryOreHP
)

func (k QueryKind) String() string {
	switch k {
	case QueryOres:
		return "ores"
	case QueryEquippedItem:
		return "equipped_item"
	case QueryOreHP:
		return "ore_hp"
	}

	return "unknown"
}

// Query asks the game for a piece of state. Slot is used by QueryEquippedItem, OreID by QueryOreHP.
type Query struct {
	Kind  QueryKind
	Slot  string
	OreID string
}

// State is the typed answer to a Query. Only the fields relevant to the query kind are set.
type State struct {
	Ores   Snapshot
	ItemID string
	HP     int
	Found  bool
}

type CommandKind int

const (
	CommandMine CommandKind = iota
	CommandEquip
)

func (k CommandKind) String() string {
	switch k {
	case CommandMine:
		return "mine"
	case CommandEquip:
		return "equip"
	}

	return "unknown"
}

// Command changes game state. TargetID is the ore id for CommandMine, the item local id for CommandEquip.
type Command struct {
	Kind     CommandKind
	TargetID string
	Set      int
}

type ResultStatus string

const (
	StatusOK       ResultStatus = "ok"
	StatusNotFound ResultStatus = "not_found"
	StatusDepleted ResultStatus = "depleted"
	StatusFailed   ResultStatus = "failed"
)

// Result is the outcome of a Command. HP carries the pre-action HP for CommandMine.
type Result struct {
	Status  ResultStatus
	HP      int
	Message string
}

// Host is the narrow capability the bot needs from the running game.
type Host interface {
	QueryState(ctx context.Context, q Query) (State, error)
	IssueCommand(ctx context.Context, cmd Command) (Result, error)
}
