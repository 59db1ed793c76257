package horde

import "time"

// EventKind names a domain event type.
type EventKind string

const (
	// EventCreated records a new creature entering the store.
	EventCreated EventKind = "created"
	// EventTransfer records an ownership change via either transfer path.
	EventTransfer EventKind = "transfer"
	// EventApproval records a pending two-step transfer approval.
	EventApproval EventKind = "approval"
	// EventBattleResolved records a terminal battle outcome.
	EventBattleResolved EventKind = "battle_resolved"
)

// Event is one append-only domain event. Seq is assigned by the Log,
// monotonically increasing from 1, and stands in for a block number:
// external observers replay and query by Seq range.
//
// Payload fields are populated per Kind; unrelated fields are zero.
type Event struct {
	Seq  uint64
	Kind EventKind
	At   time.Time

	// Created: CreatureID, Owner, Name, DNA.
	// Transfer: CreatureID, From, To.
	// Approval: CreatureID, Owner, Approved.
	// BattleResolved: AttackerID, DefenderID, Won, Roll.
	CreatureID ID
	Owner      Address
	From       Address
	To         Address
	Approved   Address
	Name       string
	DNA        uint64
	AttackerID ID
	DefenderID ID
	Won        bool
	Roll       uint64
}
