package event

import "time"

type Event interface {
	Message() string
	Supervisor() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	message    string
	supervisor string
	occurredAt time.Time
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) Supervisor() string {
	return b.supervisor
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func Text(supervisor string, message string) BaseEvent {
	return BaseEvent{
		message:    message,
		supervisor: supervisor,
		occurredAt: time.Now(),
	}
}

type MiningStartedEvent struct {
	BaseEvent
	OreID     string
	InitialHP int
	Primary   bool
}

func MiningStarted(be BaseEvent, oreID string, initialHP int, primary bool) MiningStartedEvent {
	return MiningStartedEvent{BaseEvent: be, OreID: oreID, InitialHP: initialHP, Primary: primary}
}

type GlovesSwitchedEvent struct {
	BaseEvent
	OreID string
	From  string
	To    string
}

func GlovesSwitched(be BaseEvent, oreID, from, to string) GlovesSwitchedEvent {
	return GlovesSwitchedEvent{BaseEvent: be, OreID: oreID, From: from, To: to}
}

type OreDepletedEvent struct {
	BaseEvent
	OreID string
}

func OreDepleted(be BaseEvent, oreID string) OreDepletedEvent {
	return OreDepletedEvent{BaseEvent: be, OreID: oreID}
}

type StopReason string

const (
	StopReasonError    StopReason = "error"
	StopReasonShutdown StopReason = "shutdown"
)

type MiningStoppedEvent struct {
	BaseEvent
	Reason StopReason
	Err    error
}

func MiningStopped(be BaseEvent, reason StopReason, err error) MiningStoppedEvent {
	return MiningStoppedEvent{BaseEvent: be, Reason: reason, Err: err}
}
