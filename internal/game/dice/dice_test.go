package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// fixedSource always returns val for any Intn call, clamped to n-1.
type fixedSource struct {
	val   int
	calls int
}

func (f *fixedSource) Intn(n int) int {
	f.calls++
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestChance_Extremes_DoNotConsume(t *testing.T) {
	src := &fixedSource{val: 0}
	assert.False(t, dice.Chance(src, 0))
	assert.False(t, dice.Chance(src, -1))
	assert.True(t, dice.Chance(src, 1))
	assert.True(t, dice.Chance(src, 2))
	assert.Equal(t, 0, src.calls)
}

func TestChance_Threshold(t *testing.T) {
	// 0.10 → threshold 1000: 999 succeeds, 1000 fails
	assert.True(t, dice.Chance(&fixedSource{val: 999}, 0.10))
	assert.False(t, dice.Chance(&fixedSource{val: 1000}, 0.10))
}

func TestRange_Inclusive(t *testing.T) {
	assert.Equal(t, 0, dice.Range(&fixedSource{val: 0}, 0, 40))
	assert.Equal(t, 40, dice.Range(&fixedSource{val: 1000}, 0, 40))
	src := &fixedSource{val: 3}
	assert.Equal(t, 7, dice.Range(src, 7, 7))
	assert.Equal(t, 0, src.calls)
}

func TestRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+100).Draw(rt, "hi")
		seed := rapid.Uint64().Draw(rt, "seed")
		v := dice.Range(dice.NewSeededSource(seed), lo, hi)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestPick_SingleDoesNotConsume(t *testing.T) {
	src := &fixedSource{val: 5}
	assert.Equal(t, 0, dice.Pick(src, 1))
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, 2, dice.Pick(src, 3))
}

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Replays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		a := dice.NewSeededSource(seed)
		b := dice.NewSeededSource(seed)
		for i := 0; i < 32; i++ {
			require.Equal(rt, a.Intn(1000), b.Intn(1000))
		}
		assert.Equal(rt, seed, a.Seed())
	})
}

func TestSeededSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestRoller_LogsRolls(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(&fixedSource{val: 4}, zap.New(core))

	assert.Equal(t, 4, r.Intn(10))
	assert.True(t, r.Chance("crit", 0.5))
	assert.Equal(t, 14, r.Range("bonus", 10, 20))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "dice roll", entries[0].Message)
	assert.Equal(t, "chance roll", entries[1].Message)
	assert.Equal(t, "crit", entries[1].ContextMap()["label"])
	assert.Equal(t, "range roll", entries[2].Message)
	assert.EqualValues(t, 14, entries[2].ContextMap()["result"])
}
