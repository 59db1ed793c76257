package horde

import "fmt"

// OwnedCreature pairs a creature record with its external ownership and
// approval state, for persistence snapshots.
type OwnedCreature struct {
	Creature Creature
	Owner    Address
	// Approved is the pending approval, empty when none.
	Approved Address
}

// Snapshot returns a consistent copy of every creature with its owner
// and any pending approval, in id order. Read-only.
func (k *Keeper) Snapshot() []OwnedCreature {
	k.mu.RLock()
	defer k.mu.RUnlock()

	creatures := k.store.All()
	out := make([]OwnedCreature, 0, len(creatures))
	for _, c := range creatures {
		owner := k.store.owners[c.ID]
		oc := OwnedCreature{Creature: c, Owner: owner}
		if approved, ok := k.store.Approval(c.ID); ok {
			oc.Approved = approved
		}
		out = append(out, oc)
	}
	return out
}

// Restore seeds an empty Keeper from a snapshot, preserving ids,
// ownership, and approvals. The event sequence position is not part of
// the snapshot; resume it with Events().Advance when a persisted
// journal exists.
//
// Precondition: The Keeper must be empty; snapshot must be sorted by id
// ascending with ids contiguous from 1 (the shape Snapshot produces).
// Postcondition: Count() == len(snapshot) and every record matches, or
// an error is returned with the Keeper left empty of the partial load.
func (k *Keeper) Restore(snapshot []OwnedCreature) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.store.Count() != 0 {
		return fmt.Errorf("restore into non-empty keeper (%d creatures)", k.store.Count())
	}
	for i, oc := range snapshot {
		if oc.Creature.ID != ID(i+1) {
			return fmt.Errorf("snapshot ids not contiguous: position %d has id %d", i, oc.Creature.ID)
		}
	}

	fresh := NewStore()
	for _, oc := range snapshot {
		id := fresh.Create(oc.Creature.Name, oc.Creature.DNA, oc.Owner, oc.Creature.ReadyTime)
		c := oc.Creature
		c.ID = id
		if err := fresh.Update(c); err != nil {
			return err
		}
		if oc.Approved != "" {
			fresh.SetApproval(id, oc.Approved)
		}
	}
	k.store = fresh
	return nil
}
