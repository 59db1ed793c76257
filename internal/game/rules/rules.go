// Package rules defines the tunable game rule set for the horde engine,
// loaded from YAML content files.
package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules holds every tunable constant the engine consults. Zero values
// are invalid; use Default or a loaded file.
type Rules struct {
	// Cooldown is the duration string (e.g. "24h") applied to a
	// creature after every cooldown-gated action.
	Cooldown string `yaml:"cooldown"`
	// AttackWinProbability is the attacker's win chance in percent.
	// The defender's probability is the complement; there is no
	// separate defender roll.
	AttackWinProbability uint64 `yaml:"attack_win_probability"`
	// NameChangeLevel gates renaming.
	NameChangeLevel uint32 `yaml:"name_change_level"`
	// DNAChangeLevel gates DNA rewrites.
	DNAChangeLevel uint32 `yaml:"dna_change_level"`
	// DNADigits is the decimal width of a genetic code.
	DNADigits int `yaml:"dna_digits"`
	// LevelUpFee is the fee, in collaborator-defined units, required
	// by the paid level-up action. The engine only records it; payment
	// verification happens outside.
	LevelUpFee uint64 `yaml:"level_up_fee"`
	// StarterLimit is the maximum balance a caller may hold and still
	// request a starter creature.
	StarterLimit int `yaml:"starter_limit"`
}

// Default returns the reference rule set.
func Default() Rules {
	return Rules{
		Cooldown:             "24h",
		AttackWinProbability: 70,
		NameChangeLevel:      2,
		DNAChangeLevel:       20,
		DNADigits:            16,
		LevelUpFee:           1000,
		StarterLimit:         1,
	}
}

// Validate checks that the rule set satisfies basic invariants.
//
// Postcondition: Returns nil iff Cooldown parses as a non-negative
// duration, AttackWinProbability <= 100, DNADigits is in [2, 18], and
// StarterLimit >= 1; returns an error on the first violation otherwise.
func (r Rules) Validate() error {
	d, err := time.ParseDuration(r.Cooldown)
	if err != nil {
		return fmt.Errorf("rules: cooldown %q is not a valid duration: %w", r.Cooldown, err)
	}
	if d < 0 {
		return fmt.Errorf("rules: cooldown must not be negative, got %q", r.Cooldown)
	}
	if r.AttackWinProbability > 100 {
		return fmt.Errorf("rules: attack_win_probability must be <= 100, got %d", r.AttackWinProbability)
	}
	if r.DNADigits < 2 || r.DNADigits > 18 {
		return fmt.Errorf("rules: dna_digits must be in [2, 18], got %d", r.DNADigits)
	}
	if r.StarterLimit < 1 {
		return fmt.Errorf("rules: starter_limit must be >= 1, got %d", r.StarterLimit)
	}
	return nil
}

// CooldownDuration returns the parsed cooldown.
//
// Precondition: r must have passed Validate.
func (r Rules) CooldownDuration() time.Duration {
	d, err := time.ParseDuration(r.Cooldown)
	if err != nil {
		panic("rules: CooldownDuration called on unvalidated rules: " + err.Error())
	}
	return d
}

// DNAModulus returns 10^DNADigits, the exclusive upper bound for
// genetic codes.
//
// Precondition: r must have passed Validate.
func (r Rules) DNAModulus() uint64 {
	m := uint64(1)
	for i := 0; i < r.DNADigits; i++ {
		m *= 10
	}
	return m
}

// LoadFromBytes parses a rule set from raw YAML. Fields absent from the
// document keep their Default values.
//
// Postcondition: Returns a validated Rules, or an error.
func LoadFromBytes(data []byte) (Rules, error) {
	r := Default()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing rules YAML: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// LoadFile reads and parses a rule set from path.
func LoadFile(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file %q: %w", path, err)
	}
	r, err := LoadFromBytes(data)
	if err != nil {
		return Rules{}, fmt.Errorf("loading %q: %w", path, err)
	}
	return r, nil
}
