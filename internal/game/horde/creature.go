// Package horde implements the creature ownership, transfer, and battle
// engine: an ERC721-style non-fungible entity store with a two-step
// approve/take-ownership transfer protocol, time-gated cooldowns,
// level-gated mutations, and deterministic battle resolution.
package horde

import "time"

// ID is a creature identifier. IDs are assigned monotonically starting
// at 1 and are never reused.
type ID uint64

// Creature is a non-fungible entity with identity and battle stats.
// Ownership is tracked by the Store, not embedded here, so transfers
// never rewrite creature records.
type Creature struct {
	// ID is unique and immutable once assigned.
	ID ID
	// Name is mutable only once Level reaches the rename threshold.
	Name string
	// DNA is a fixed-width genetic code, always < the configured DNA modulus.
	DNA uint64
	// Level starts at 1 and never decreases.
	Level uint32
	// ReadyTime is the instant before which cooldown-gated actions fail.
	ReadyTime time.Time
	// WinCount and LossCount are monotonically non-decreasing.
	WinCount  uint32
	LossCount uint32
}
