package horde

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReady(t *testing.T) {
	c := Creature{ReadyTime: t0}
	assert.True(t, IsReady(c, t0), "ready exactly at ReadyTime")
	assert.True(t, IsReady(c, t0.Add(time.Second)))
	assert.False(t, IsReady(c, t0.Add(-time.Second)))
}

func TestTriggerCooldown(t *testing.T) {
	c := Creature{ReadyTime: t0}
	got := TriggerCooldown(c, t0, 24*time.Hour)
	assert.True(t, got.ReadyTime.Equal(t0.Add(24*time.Hour)))
	// Input copy is untouched.
	assert.True(t, c.ReadyTime.Equal(t0))
}

func TestLevelUp_PaymentAccepted(t *testing.T) {
	c := Creature{Level: 1}
	got, err := LevelUp(c, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Level)
}

func TestLevelUp_PaymentRejected(t *testing.T) {
	c := Creature{Level: 1}
	got, err := LevelUp(c, false)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Equal(t, uint32(1), got.Level)
}

func TestCheckLevelGate(t *testing.T) {
	assert.ErrorIs(t, CheckLevelGate(Creature{Level: 1}, 2), ErrBelowLevelThreshold)
	assert.NoError(t, CheckLevelGate(Creature{Level: 2}, 2))
	assert.NoError(t, CheckLevelGate(Creature{Level: 30}, 20))
}
