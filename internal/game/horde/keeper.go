package horde

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/game/rules"
)

// offspringName is the placeholder name given to bred creatures until
// their owner renames them.
const offspringName = "NoName"

// Keeper is the synchronous external interface to the engine. All
// mutating operations serialize on one writer lock; read-only queries
// take a shared lock and see a consistent snapshot. Every operation is
// all-or-nothing: on any error return, no state has mutated.
//
// Keeper is safe for concurrent use.
type Keeper struct {
	mu     sync.RWMutex
	store  *Store
	rules  rules.Rules
	events *Log
	logger *zap.Logger
	admin  Address
	now    func() time.Time

	// nonce is the process-wide draw counter. It is incremented
	// exactly once per random draw, under mu, so no two draws observe
	// the same pre-increment value.
	nonce uint64

	// Hook callbacks, injected after construction (nil = no-op). They
	// run after the operation's lock is released, so a hook may call
	// back into read-only Keeper methods.
	OnBattleResolved  func(attacker, defender Creature, outcome BattleOutcome)
	OnCreatureCreated func(c Creature, owner Address)
}

// Option configures a Keeper at construction time.
type Option func(*Keeper)

// WithClock injects the time source. The default is time.Now; tests
// inject a fixed or stepped clock.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) { k.now = now }
}

// WithAdmin sets the stored admin identity. Admin-gated operations
// compare the caller against this address explicitly.
func WithAdmin(admin Address) Option {
	return func(k *Keeper) { k.admin = admin }
}

// NewKeeper creates a Keeper with an empty store and event log.
//
// Precondition: r must have passed rules.Validate; logger must be non-nil.
// Postcondition: Returns a ready Keeper with Count() == 0.
func NewKeeper(r rules.Rules, logger *zap.Logger, opts ...Option) *Keeper {
	k := &Keeper{
		store:  NewStore(),
		rules:  r,
		events: NewLog(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Events returns the append-only domain event log.
func (k *Keeper) Events() *Log {
	return k.events
}

// Rules returns the current rule set.
func (k *Keeper) Rules() rules.Rules {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.rules
}

// SetLevelUpFee updates the recorded level-up fee.
//
// Precondition: caller must equal the stored admin identity.
// Postcondition: Returns ErrUnauthorized for any other caller; the fee
// is unchanged on error.
func (k *Keeper) SetLevelUpFee(caller Address, fee uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if caller != k.admin || k.admin == "" {
		return ErrUnauthorized
	}
	k.rules.LevelUpFee = fee
	k.logger.Info("level-up fee updated", zap.Uint64("fee", fee))
	return nil
}

// CreateRandom mints a starter creature for caller with a drawn DNA.
//
// Postcondition: Returns ErrAlreadyOwns when caller's balance has
// reached the starter limit; otherwise the new creature exists with
// level 1 and caller as owner, and a Created event is appended.
func (k *Keeper) CreateRandom(caller Address, name string) (ID, error) {
	k.mu.Lock()
	if k.store.BalanceOf(caller) >= k.rules.StarterLimit {
		k.mu.Unlock()
		return 0, ErrAlreadyOwns
	}

	now := k.now()
	k.nonce++
	dna := drawRandom(now, caller, k.nonce, k.rules.DNAModulus())
	id := k.store.Create(name, dna, caller, now)
	c, _ := k.store.Get(id)
	k.events.Append(Event{
		Kind: EventCreated, At: now,
		CreatureID: id, Owner: caller, Name: name, DNA: dna,
	})
	k.mu.Unlock()

	k.logger.Info("creature created",
		zap.Uint64("id", uint64(id)),
		zap.String("owner", string(caller)),
	)
	if k.OnCreatureCreated != nil {
		k.OnCreatureCreated(c, caller)
	}
	return id, nil
}

// Get returns a copy of the creature with the given id.
func (k *Keeper) Get(id ID) (Creature, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.store.Get(id)
}

// OwnerOf returns the current owner of id. Read-only.
func (k *Keeper) OwnerOf(id ID) (Address, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.store.OwnerOf(id)
}

// BalanceOf returns addr's creature count. Read-only, never fails.
func (k *Keeper) BalanceOf(addr Address) int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.store.BalanceOf(addr)
}

// Count returns the total number of creatures ever created.
func (k *Keeper) Count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.store.Count()
}

// Transfer is the single-step transfer path: caller must currently own
// id. Transfers to BurnAddress are deliberately permitted; the record
// persists under the sentinel but no caller can ever act on it again.
//
// Postcondition: On success OwnerOf(id) == to, balances have moved by
// one, any pending approval is cleared, and a Transfer event is
// appended. Returns ErrNotFound or ErrUnauthorized with no mutation.
func (k *Keeper) Transfer(caller, to Address, id ID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	owner, err := k.store.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrUnauthorized
	}
	return k.transferLocked(owner, to, id)
}

// Approve records a pending two-step transfer approval for id. A prior
// approval is overwritten without error.
//
// Postcondition: On success Approval(id) == approved and an Approval
// event is appended. Returns ErrNotFound or ErrUnauthorized otherwise.
func (k *Keeper) Approve(caller, approved Address, id ID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	owner, err := k.store.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrUnauthorized
	}
	k.store.SetApproval(id, approved)
	k.events.Append(Event{
		Kind: EventApproval, At: k.now(),
		CreatureID: id, Owner: owner, Approved: approved,
	})
	return nil
}

// TakeOwnership completes a two-step transfer: caller must be the
// currently approved address for id. The approval is consumed.
//
// Postcondition: On success ownership moves from the previous owner to
// caller and the approval is cleared; a second call by the same caller
// fails ErrUnauthorized.
func (k *Keeper) TakeOwnership(caller Address, id ID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	owner, err := k.store.OwnerOf(id)
	if err != nil {
		return err
	}
	approved, ok := k.store.Approval(id)
	if !ok || approved != caller {
		return ErrUnauthorized
	}
	return k.transferLocked(owner, caller, id)
}

// transferLocked is the single internal transfer primitive both paths
// funnel into. Caller holds mu and has validated authorization.
func (k *Keeper) transferLocked(from, to Address, id ID) error {
	if err := k.store.Transfer(from, to, id); err != nil {
		return err
	}
	k.events.Append(Event{
		Kind: EventTransfer, At: k.now(),
		CreatureID: id, From: from, To: to,
	})
	k.logger.Debug("creature transferred",
		zap.Uint64("id", uint64(id)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

// LevelUp applies the paid level-up action to id.
//
// Postcondition: Returns ErrNotFound, ErrUnauthorized, or
// ErrInsufficientPayment with no mutation; on success Level grows by 1.
func (k *Keeper) LevelUp(caller Address, id ID, paymentAccepted bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	c, err := k.ownedCreatureLocked(caller, id)
	if err != nil {
		return err
	}
	c, err = LevelUp(c, paymentAccepted)
	if err != nil {
		return err
	}
	return k.store.Update(c)
}

// ChangeName renames id.
//
// Postcondition: Returns ErrNotFound, ErrUnauthorized, or
// ErrBelowLevelThreshold with no mutation.
func (k *Keeper) ChangeName(caller Address, id ID, newName string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	c, err := k.ownedCreatureLocked(caller, id)
	if err != nil {
		return err
	}
	if err := CheckLevelGate(c, k.rules.NameChangeLevel); err != nil {
		return err
	}
	c.Name = newName
	return k.store.Update(c)
}

// ChangeDNA rewrites id's genetic code, reduced mod the DNA modulus.
//
// Postcondition: Returns ErrNotFound, ErrUnauthorized, or
// ErrBelowLevelThreshold with no mutation.
func (k *Keeper) ChangeDNA(caller Address, id ID, newDNA uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	c, err := k.ownedCreatureLocked(caller, id)
	if err != nil {
		return err
	}
	if err := CheckLevelGate(c, k.rules.DNAChangeLevel); err != nil {
		return err
	}
	c.DNA = newDNA % k.rules.DNAModulus()
	return k.store.Update(c)
}

// Attack resolves one battle between caller's attacker and a defender.
// The battle is terminal: one roll decides the outcome and no battle
// state persists between calls.
//
// Postcondition: Returns ErrNotFound, ErrUnauthorized, or ErrOnCooldown
// with no mutation. On resolution the attacker's cooldown triggers
// regardless of outcome; win/loss bookkeeping follows the outcome; a
// win additionally levels the attacker and spawns an offspring owned by
// caller. BattleResolved (and, on win, Created) events are appended.
func (k *Keeper) Attack(caller Address, attackerID, defenderID ID) (BattleOutcome, error) {
	outcome, attacker, defender, offspring, err := k.attackLocked(caller, attackerID, defenderID)
	if err != nil {
		return BattleOutcome{}, err
	}

	k.logger.Info("battle resolved",
		zap.Uint64("attacker", uint64(attackerID)),
		zap.Uint64("defender", uint64(defenderID)),
		zap.Bool("won", outcome.Won),
		zap.Uint64("roll", outcome.Roll),
	)
	if outcome.Won && k.OnCreatureCreated != nil {
		k.OnCreatureCreated(offspring, caller)
	}
	if k.OnBattleResolved != nil {
		k.OnBattleResolved(attacker, defender, outcome)
	}
	return outcome, nil
}

func (k *Keeper) attackLocked(caller Address, attackerID, defenderID ID) (BattleOutcome, Creature, Creature, Creature, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	attacker, err := k.store.Get(attackerID)
	if err != nil {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, err
	}
	defender, err := k.store.Get(defenderID)
	if err != nil {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, err
	}
	owner, _ := k.store.OwnerOf(attackerID)
	if owner != caller {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, ErrUnauthorized
	}
	now := k.now()
	if !IsReady(attacker, now) {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, ErrOnCooldown
	}

	k.nonce++
	roll := drawRandom(now, caller, k.nonce, 100)
	won := roll < k.rules.AttackWinProbability

	outcome := BattleOutcome{
		AttackerID: attackerID,
		DefenderID: defenderID,
		Won:        won,
		Roll:       roll,
	}

	// A creature may be sent against itself. Both sides' bookkeeping
	// then lands on the same record, so all mutations go through the
	// attacker copy and exactly one write-back happens; a second write
	// from a stale defender copy would discard them.
	self := attackerID == defenderID

	var offspring Creature
	if won {
		attacker.WinCount++
		attacker.Level++
		if self {
			attacker.LossCount++
		} else {
			defender.LossCount++
		}

		dna := offspringDNA(attacker.DNA, defender.DNA, k.rules.DNAModulus())
		offID := k.store.Create(offspringName, dna, caller, now)
		offspring, _ = k.store.Get(offID)
		outcome.OffspringID = offID
		k.events.Append(Event{
			Kind: EventCreated, At: now,
			CreatureID: offID, Owner: caller, Name: offspringName, DNA: dna,
		})
	} else {
		attacker.LossCount++
		if self {
			attacker.WinCount++
		} else {
			defender.WinCount++
		}
	}

	attacker = TriggerCooldown(attacker, now, k.rules.CooldownDuration())
	if err := k.store.Update(attacker); err != nil {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, err
	}
	if self {
		defender = attacker
	} else if err := k.store.Update(defender); err != nil {
		return BattleOutcome{}, Creature{}, Creature{}, Creature{}, err
	}

	k.events.Append(Event{
		Kind: EventBattleResolved, At: now,
		AttackerID: attackerID, DefenderID: defenderID,
		Won: won, Roll: roll,
	})
	return outcome, attacker, defender, offspring, nil
}

// ownedCreatureLocked fetches id and validates that caller owns it.
// Caller holds mu.
func (k *Keeper) ownedCreatureLocked(caller Address, id ID) (Creature, error) {
	c, err := k.store.Get(id)
	if err != nil {
		return Creature{}, err
	}
	owner, err := k.store.OwnerOf(id)
	if err != nil {
		return Creature{}, err
	}
	if owner != caller {
		return Creature{}, ErrUnauthorized
	}
	return c, nil
}
