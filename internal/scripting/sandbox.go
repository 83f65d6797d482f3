// Package scripting hosts the Lua score hooks that bias AI decisions. Hooks see
// plain numbers and strings only; nothing here imports the combat model.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes one hook call may execute when no
// limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are cleared from every sandboxed state.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// budget is a context whose Done is polled by the VM once per opcode. It
// cancels itself when the opcode allowance runs out.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newBudget(opcodes int) *budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(opcodes))
	return b
}

// NewSandboxedState returns a VM with only the base, table, string, and math
// libraries, without the file and module loaders, and with an opcode budget of
// instLimit that lasts until the next Rebudget.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	Rebudget(L, instLimit)
	return L
}

// Rebudget gives L a fresh allowance of instLimit opcodes. The returned
// function releases the allowance's context.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
func Rebudget(L *lua.LState, instLimit int) context.CancelFunc {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	b := newBudget(instLimit)
	L.SetContext(b)
	return b.cancel
}
