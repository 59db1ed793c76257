package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the horde.* Lua table into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The horde global is defined in L with get_creature and
// log functions.
func (m *Manager) RegisterModules(L *lua.LState) {
	horde := L.NewTable()

	L.SetField(horde, "get_creature", L.NewFunction(func(L *lua.LState) int {
		id := uint64(L.CheckNumber(1))
		if m.GetCreature == nil {
			L.Push(lua.LNil)
			return 1
		}
		c := m.GetCreature(id)
		if c == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(creatureTable(L, *c))
		return 1
	}))

	L.SetField(horde, "log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		m.logger.Info("script log", zap.String("message", msg))
		return 0
	}))

	L.SetGlobal("horde", horde)
}
