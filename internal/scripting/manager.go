package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// globalNamespace is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no namespace VM is found.
const globalNamespace = "__global__"

// vm is one loaded LState. An LState is single-threaded, so every call holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
	// roller serves engine.dice for the call in progress; nil outside CallHookWith.
	roller *dice.Roller
}

// Manager owns one sandboxed LState per script namespace and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same namespace are serialized;
// different namespaces run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager. roller serves engine.dice while scripts load and
// for CallHook; CallHookWith substitutes the caller's roller.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no namespaces loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadNamespace creates a sandboxed VM for ns, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
// Loading a namespace twice replaces the previous VM.
//
// Precondition: ns must be non-empty; scriptDir must be a readable directory.
// Postcondition: The namespace VM is registered; returns error on Lua load failure.
func (m *Manager) LoadNamespace(ns, scriptDir string, instLimit int) error {
	if ns == "" {
		return fmt.Errorf("scripting: namespace must not be empty")
	}
	return m.loadInto(ns, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM consulted by CallHook when a namespace
// has no VM of its own.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalNamespace, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	v := &vm{L: L, limit: instLimit}
	m.registerModules(v)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		cancel := Rebudget(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = v
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Info("scripting: namespace loaded",
		zap.String("namespace", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// HasHook reports whether hook is a function defined in ns (or the global fallback).
func (m *Manager) HasHook(ns, hook string) bool {
	v := m.lookup(ns)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.L.GetGlobal(hook).Type() == lua.LTFunction
}

func (m *Manager) lookup(ns string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[ns]; ok {
		return v
	}
	return m.vms[globalNamespace]
}

// CallHook calls the named Lua global function in ns's VM with engine.dice bound
// to the Manager's roller. See CallHookWith.
func (m *Manager) CallHook(ns, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.CallHookWith(ns, hook, nil, args...)
}

// CallHookWith calls the named Lua global function in ns's VM, falling back to
// the __global__ VM when ns has none. engine.dice draws from roller for the
// duration of the call, so a caller holding a seeded roller gets replayable
// scripts; a nil roller uses the Manager's. Returns (LNil, nil) if the hook is
// not defined or no VM exists. Lua runtime errors, including an exhausted
// instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHookWith(ns, hook string, roller *dice.Roller, args ...lua.LValue) (lua.LValue, error) {
	v := m.lookup(ns)
	if v == nil {
		m.logger.Info("scripting: no VM for namespace",
			zap.String("namespace", ns),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	v.roller = roller
	defer func() { v.roller = nil }()
	cancel := Rebudget(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("namespace", ns),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every loaded VM.
//
// Postcondition: Subsequent CallHook calls return (LNil, nil).
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
