package horde

import "time"

// The cooldown and leveling policy is a set of pure functions over a
// Creature copy and an injected current time. Nothing here touches the
// Store or reads the wall clock.

// IsReady reports whether the creature may perform a cooldown-gated
// action at the given instant.
//
// Postcondition: Returns true iff now >= c.ReadyTime.
func IsReady(c Creature, now time.Time) bool {
	return !now.Before(c.ReadyTime)
}

// TriggerCooldown returns a copy of c with ReadyTime = now + d. It is
// applied after every cooldown-gated action regardless of outcome.
func TriggerCooldown(c Creature, now time.Time, d time.Duration) Creature {
	c.ReadyTime = now.Add(d)
	return c
}

// LevelUp returns a copy of c with Level incremented by 1. Fee handling
// is a collaborator concern; paymentAccepted is the pre-verified result
// of that external check.
//
// Postcondition: Returns ErrInsufficientPayment and an unchanged copy
// when paymentAccepted is false; Level never decreases.
func LevelUp(c Creature, paymentAccepted bool) (Creature, error) {
	if !paymentAccepted {
		return c, ErrInsufficientPayment
	}
	c.Level++
	return c, nil
}

// CheckLevelGate validates a level-gated feature.
//
// Postcondition: Returns ErrBelowLevelThreshold iff c.Level < threshold.
func CheckLevelGate(c Creature, threshold uint32) error {
	if c.Level < threshold {
		return ErrBelowLevelThreshold
	}
	return nil
}
