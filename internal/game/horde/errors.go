package horde

import "errors"

// ErrNotFound is returned when a creature id does not exist.
var ErrNotFound = errors.New("creature not found")

// ErrUnauthorized is returned when the caller lacks the required
// relationship to the creature (owner or approved party).
var ErrUnauthorized = errors.New("caller not authorized")

// ErrOnCooldown is returned when a cooldown-gated action is attempted
// before the creature's ready time.
var ErrOnCooldown = errors.New("creature on cooldown")

// ErrBelowLevelThreshold is returned when a level-gated feature is
// attempted before the creature reaches the required level.
var ErrBelowLevelThreshold = errors.New("creature below level threshold")

// ErrAlreadyOwns is returned when a caller who already owns a creature
// requests a starter creature.
var ErrAlreadyOwns = errors.New("caller already owns a creature")

// ErrInsufficientPayment is returned when a level-up is attempted
// without the required fee being verified.
var ErrInsufficientPayment = errors.New("level-up fee not satisfied")
