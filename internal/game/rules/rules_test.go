package rules

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestDefault_IsValid(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())
	assert.Equal(t, 24*time.Hour, r.CooldownDuration())
	assert.Equal(t, uint64(70), r.AttackWinProbability)
	assert.Equal(t, uint64(10_000_000_000_000_000), r.DNAModulus())
}

func TestValidate_BadCooldown(t *testing.T) {
	r := Default()
	r.Cooldown = "one day"
	assert.Error(t, r.Validate())

	r.Cooldown = "-5m"
	assert.Error(t, r.Validate())
}

func TestValidate_WinProbabilityBounds(t *testing.T) {
	r := Default()
	r.AttackWinProbability = 100
	assert.NoError(t, r.Validate())
	r.AttackWinProbability = 101
	assert.Error(t, r.Validate())
}

func TestValidate_DNADigitsBounds(t *testing.T) {
	r := Default()
	r.DNADigits = 1
	assert.Error(t, r.Validate())
	r.DNADigits = 19
	assert.Error(t, r.Validate())
	r.DNADigits = 2
	assert.NoError(t, r.Validate())
}

func TestValidate_StarterLimit(t *testing.T) {
	r := Default()
	r.StarterLimit = 0
	assert.Error(t, r.Validate())
}

func TestLoadFromBytes_OverridesDefaults(t *testing.T) {
	data := []byte(`
cooldown: 1h
attack_win_probability: 55
dna_digits: 8
`)
	r, err := LoadFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, r.CooldownDuration())
	assert.Equal(t, uint64(55), r.AttackWinProbability)
	assert.Equal(t, uint64(100_000_000), r.DNAModulus())
	// Untouched fields keep defaults.
	assert.Equal(t, uint32(2), r.NameChangeLevel)
	assert.Equal(t, 1, r.StarterLimit)
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("cooldown: [nope"))
	assert.Error(t, err)
}

func TestLoadFromBytes_InvalidRules(t *testing.T) {
	_, err := LoadFromBytes([]byte("attack_win_probability: 150"))
	assert.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadFile_RoundTrip(t *testing.T) {
	path := t.TempDir() + "/rules.yaml"
	require.NoError(t, writeFile(path, "cooldown: 30m\nlevel_up_fee: 250\n"))
	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, r.CooldownDuration())
	assert.Equal(t, uint64(250), r.LevelUpFee)
}
