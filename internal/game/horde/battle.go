package horde

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// BattleOutcome reports the terminal result of a single Attack call.
// No partial or multi-round battle state persists between calls.
type BattleOutcome struct {
	AttackerID ID
	DefenderID ID
	Won        bool
	// Roll is the raw value drawn in [0, 100).
	Roll uint64
	// OffspringID is the creature spawned for the attacker on a win,
	// or 0 on a loss.
	OffspringID ID
}

// drawRandom draws a deterministic pseudo-random value in [0, modulus)
// from the current time, the caller identity, and the draw nonce. It
// backs both battle rolls and starter DNA generation.
//
// This generator is intentionally weak: every seed input is observable
// or predictable by an adversary. That is a documented property of the
// game, not an oversight; replacing it with a hardened source changes
// the semantics. sha256 serves only as a mixing digest.
//
// Precondition: modulus > 0.
func drawRandom(now time.Time, caller Address, nonce uint64, modulus uint64) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(now.Unix()))
	h.Write(buf[:])
	h.Write([]byte(caller))
	binary.BigEndian.PutUint64(buf[:], nonce)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]) % modulus
}

// offspringDNA derives a bred creature's genetic code from its parents:
// the integer mean of the two codes, with the last two decimal digits
// overwritten with 99 as the offspring marker, reduced mod modulus.
//
// Precondition: modulus >= 100.
// Postcondition: The result is < modulus and ends in the digits 99.
func offspringDNA(attacker, defender, modulus uint64) uint64 {
	dna := (attacker + defender) / 2
	dna = dna - dna%100 + 99
	return dna % modulus
}
