package horde

import "time"

// Store owns the canonical creature records and the ownership, balance,
// and approval mappings. It is the sole mutation path for all of them:
// every mapping update happens inside one Store method, so ownership
// and balances can never drift apart.
//
// Store performs no locking of its own. The Keeper serializes all
// access; Store methods must only be called under the Keeper's lock.
type Store struct {
	creatures []Creature
	index     map[ID]int
	owners    map[ID]Address
	balances  map[Address]int
	approvals map[ID]Address
}

// NewStore creates an empty Store.
//
// Postcondition: Count() == 0 and BalanceOf returns 0 for every address.
func NewStore() *Store {
	return &Store{
		index:     make(map[ID]int),
		owners:    make(map[ID]Address),
		balances:  make(map[Address]int),
		approvals: make(map[ID]Address),
	}
}

// Create allocates a new creature with level 1, zeroed counters, and
// ReadyTime = now, and atomically records ownership and balance.
//
// Precondition: owner must be non-empty.
// Postcondition: The returned ID is one greater than the previous
// maximum; OwnerOf(id) == owner and BalanceOf(owner) has grown by 1.
func (s *Store) Create(name string, dna uint64, owner Address, now time.Time) ID {
	id := ID(len(s.creatures) + 1)
	s.creatures = append(s.creatures, Creature{
		ID:        id,
		Name:      name,
		DNA:       dna,
		Level:     1,
		ReadyTime: now,
	})
	s.index[id] = len(s.creatures) - 1
	s.owners[id] = owner
	s.balances[owner]++
	return id
}

// Get returns a copy of the creature with the given id.
//
// Postcondition: Returns ErrNotFound iff id was never created.
func (s *Store) Get(id ID) (Creature, error) {
	i, ok := s.index[id]
	if !ok {
		return Creature{}, ErrNotFound
	}
	return s.creatures[i], nil
}

// Update writes back a mutated creature by id. This is the arena+index
// write path: callers fetch by id, mutate the copy, and write back;
// there is no aliased access to stored records.
//
// Precondition: c.ID must reference an existing creature.
func (s *Store) Update(c Creature) error {
	i, ok := s.index[c.ID]
	if !ok {
		return ErrNotFound
	}
	s.creatures[i] = c
	return nil
}

// OwnerOf returns the current owner of id.
//
// Postcondition: Returns ErrNotFound iff id was never created; every
// existing id has exactly one owner.
func (s *Store) OwnerOf(id ID) (Address, error) {
	owner, ok := s.owners[id]
	if !ok {
		return "", ErrNotFound
	}
	return owner, nil
}

// BalanceOf returns the number of creatures owned by addr. Unknown
// addresses have balance 0; this never fails.
func (s *Store) BalanceOf(addr Address) int {
	return s.balances[addr]
}

// Count returns the total number of creatures ever created.
func (s *Store) Count() int {
	return len(s.creatures)
}

// Approval returns the pending approved address for id, if any.
func (s *Store) Approval(id ID) (Address, bool) {
	addr, ok := s.approvals[id]
	return addr, ok
}

// SetApproval records a pending approval for id, overwriting any prior
// approval without error.
//
// Precondition: id must exist (callers validate).
func (s *Store) SetApproval(id ID, approved Address) {
	s.approvals[id] = approved
}

// Transfer atomically moves id from one owner to another: clears any
// pending approval, decrements from's balance, increments to's balance,
// and rewrites the ownership entry.
//
// Precondition: from must equal OwnerOf(id) (callers validate).
// Postcondition: OwnerOf(id) == to; Approval(id) is absent; the sum of
// all balances is unchanged.
func (s *Store) Transfer(from, to Address, id ID) error {
	if _, ok := s.index[id]; !ok {
		return ErrNotFound
	}
	delete(s.approvals, id)
	s.balances[from]--
	if s.balances[from] == 0 {
		delete(s.balances, from)
	}
	s.balances[to]++
	s.owners[id] = to
	return nil
}

// All returns a copy of every creature record, in id order.
func (s *Store) All() []Creature {
	out := make([]Creature, len(s.creatures))
	copy(out, s.creatures)
	return out
}
