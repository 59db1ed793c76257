package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// CreatureInfo is a snapshot of a creature's state passed to Lua hooks.
type CreatureInfo struct {
	ID        uint64
	Name      string
	DNA       uint64
	Level     uint32
	WinCount  uint32
	LossCount uint32
}

// Manager owns one sandboxed LState for hook scripts and exposes hook
// dispatch. Hooks observe engine events; they can never mutate engine
// state, so a misbehaving script is contained to its VM.
//
// Manager is safe for concurrent dispatch after LoadDir completes: the
// single LState is serialized by the manager lock.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    func()
	instLimit int
	logger    *zap.Logger

	// GetCreature is injected after construction. nil = horde.get_creature
	// returns nil in scripts.
	GetCreature func(id uint64) *CreatureInfo
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// LoadDir creates a sandboxed VM, registers the horde.* modules, then
// executes every *.lua file in dir in lexicographic order. A prior VM,
// if any, is replaced and closed.
//
// Precondition: dir must be a readable directory.
// Postcondition: The VM is ready for dispatch; returns an error on any
// Lua load failure, leaving the prior VM (if any) in place.
func (m *Manager) LoadDir(dir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(dir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}

	m.mu.Lock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
	m.instLimit = instLimit
	m.mu.Unlock()

	m.logger.Info("hook scripts loaded",
		zap.String("dir", dir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases the VM. Dispatch after Close is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if
// the hook is not defined or no VM is loaded. Lua runtime errors are
// logged at Warn level and never propagated into the engine.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, args...)
}

// callLocked invokes hook on the current VM. Caller holds m.mu.
func (m *Manager) callLocked(hook string, args ...lua.LValue) (lua.LValue, error) {
	if m.state == nil {
		return lua.LNil, nil
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	// Each dispatch gets a fresh opcode budget; the load-time context
	// set by NewSandboxedState only covers DoFile.
	ctx, cancel := newCountingContext(m.instLimit)
	L.SetContext(ctx)
	defer cancel()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// BattleResolved dispatches the on_battle_resolved hook.
func (m *Manager) BattleResolved(attacker, defender CreatureInfo, won bool, roll uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	att := creatureTable(m.state, attacker)
	def := creatureTable(m.state, defender)
	_, _ = m.callLocked("on_battle_resolved", att, def, lua.LBool(won), lua.LNumber(roll))
}

// CreatureCreated dispatches the on_creature_created hook.
func (m *Manager) CreatureCreated(c CreatureInfo, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return
	}
	tbl := creatureTable(m.state, c)
	_, _ = m.callLocked("on_creature_created", tbl, lua.LString(owner))
}

// creatureTable builds a Lua table snapshot of c. Caller holds m.mu.
func creatureTable(L *lua.LState, c CreatureInfo) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LNumber(c.ID))
	tbl.RawSetString("name", lua.LString(c.Name))
	tbl.RawSetString("dna", lua.LNumber(c.DNA))
	tbl.RawSetString("level", lua.LNumber(c.Level))
	tbl.RawSetString("win_count", lua.LNumber(c.WinCount))
	tbl.RawSetString("loss_count", lua.LNumber(c.LossCount))
	return tbl
}
