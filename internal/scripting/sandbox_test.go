package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestSandbox_InstructionLimitTerminatesRunawayScript(t *testing.T) {
	L, cancel := NewSandboxedState(10_000)
	defer cancel()
	defer L.Close()

	err := L.DoString(`while true do end`)
	require.Error(t, err, "runaway loop must be terminated by the opcode limit")
}

func TestSandbox_DangerousGlobalsStripped(t *testing.T) {
	L, cancel := NewSandboxedState(0)
	defer cancel()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "global %q must be stripped", name)
	}
}

func TestSandbox_SafeLibrariesAvailable(t *testing.T) {
	L, cancel := NewSandboxedState(0)
	defer cancel()
	defer L.Close()

	require.NoError(t, L.DoString(`
		result = math.floor(7.9) + string.len("abc") + #({1, 2})
	`))
	assert.Equal(t, lua.LNumber(12), L.GetGlobal("result"))
}

func TestSandbox_ZeroLimitUsesDefault(t *testing.T) {
	L, cancel := NewSandboxedState(0)
	defer cancel()
	defer L.Close()

	// A small bounded loop fits well inside the default limit.
	assert.NoError(t, L.DoString(`for i = 1, 100 do end`))
}
