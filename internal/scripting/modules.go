package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// registerModules defines the engine global in v's state:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.chance(p)   -> boolean
//	engine.dice.range(lo, hi) -> integer in [lo, hi]
//	engine.clamp(v, lo, hi) -> number
//
// engine.dice draws from the roller of the call in progress, or from the
// Manager's roller while files load.
func (m *Manager) registerModules(v *vm) {
	L := v.L
	roller := func() *dice.Roller {
		if v.roller != nil {
			return v.roller
		}
		return m.roller
	}
	engine := L.NewTable()

	log := L.NewTable()
	for level, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		write := fn
		L.SetField(log, level, L.NewFunction(func(L *lua.LState) int {
			write("lua: "+L.CheckString(1), zap.String("source", "script"))
			return 0
		}))
	}
	L.SetField(engine, "log", log)

	dice := L.NewTable()
	L.SetField(dice, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(roller().Chance("lua", p)))
		return 1
	}))
	L.SetField(dice, "range", L.NewFunction(func(L *lua.LState) int {
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		L.Push(lua.LNumber(roller().Range("lua", lo, hi)))
		return 1
	}))
	L.SetField(engine, "dice", dice)

	L.SetField(engine, "clamp", L.NewFunction(func(L *lua.LState) int {
		v, lo, hi := L.CheckNumber(1), L.CheckNumber(2), L.CheckNumber(3)
		switch {
		case v < lo:
			v = lo
		case v > hi:
			v = hi
		}
		L.Push(v)
		return 1
	}))

	L.SetGlobal("engine", engine)
}
