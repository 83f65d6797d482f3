package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	ns := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadNamespace(ns, dir, 0))
	ret, err := mgr.CallHook(ns, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop()), logger)

	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.FilterMessageSnippet("lua: ").All() {
		levels[e.Level.String()] = true
	}
	for _, want := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, levels[want], "expected %s log", want)
	}
}

func TestEngineDice_Range_Property(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "dice.lua", `
		function roll(lo, hi) return engine.dice.range(lo, hi) end
	`)
	require.NoError(t, mgr.LoadNamespace("dice", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-10, 10).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+20).Draw(rt, "hi")
		ret, err := mgr.CallHook("dice", "roll", lua.LNumber(lo), lua.LNumber(hi))
		require.NoError(rt, err)
		n, ok := ret.(lua.LNumber)
		require.True(rt, ok)
		assert.GreaterOrEqual(rt, int(n), lo)
		assert.LessOrEqual(rt, int(n), hi)
	})
}

func TestEngineDice_ChanceExtremes(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function extremes() return engine.dice.chance(1) and not engine.dice.chance(0) end
	`, "extremes")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineClamp(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function c() return engine.clamp(5, 0, 1) + engine.clamp(-3, 0, 1) + engine.clamp(0.25, 0, 1) end
	`, "c")
	assert.Equal(t, lua.LNumber(1.25), ret)
}
