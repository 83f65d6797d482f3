package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/status"
)

func TestSet_Apply_New(t *testing.T) {
	s := status.NewSet()
	ok, err := s.Apply(status.Effect{Kind: status.Poison, Duration: 3, Magnitude: 5})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Has(status.Poison))
	assert.Equal(t, 1, s.Stacks(status.Poison))
}

func TestSet_Apply_ZeroDurationIsNoop(t *testing.T) {
	s := status.NewSet()
	ok, err := s.Apply(status.Effect{Kind: status.Burn, Duration: 0, Magnitude: 5})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSet_Apply_UnknownKind(t *testing.T) {
	s := status.NewSet()
	_, err := s.Apply(status.Effect{Kind: "plague", Duration: 2})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSet_Apply_MergeCapsStacks(t *testing.T) {
	s := status.NewSet()
	e := status.Effect{Kind: status.Bleed, Duration: 2, Magnitude: 3, MaxStacks: 3}
	for i := 0; i < 5; i++ {
		_, err := s.Apply(e)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Stacks(status.Bleed))
	assert.Equal(t, 1, s.Len())
}

func TestSet_Apply_MergeKeepsLongerDurationAndLargerMagnitude(t *testing.T) {
	s := status.NewSet()
	_, _ = s.Apply(status.Effect{Kind: status.AttackUp, Duration: 4, Magnitude: 0.1, MaxStacks: 1})
	_, _ = s.Apply(status.Effect{Kind: status.AttackUp, Duration: 2, Magnitude: 0.3, MaxStacks: 1})
	got, ok := s.Get(status.AttackUp)
	require.True(t, ok)
	assert.Equal(t, 4, got.Duration)
	assert.InDelta(t, 0.3, got.Magnitude, 1e-9)
	assert.Equal(t, 1, got.Stacks)
}

func TestSet_Tick_DotAndHot(t *testing.T) {
	s := status.NewSet()
	_, _ = s.Apply(status.Effect{Kind: status.Poison, Duration: 2, Magnitude: 4, Stacks: 2, MaxStacks: 5})
	_, _ = s.Apply(status.Effect{Kind: status.Regeneration, Duration: 1, Magnitude: 6})
	_, _ = s.Apply(status.Effect{Kind: status.Haste, Duration: 3, Magnitude: 1})

	ticks := s.Tick()
	require.Len(t, ticks, 3)
	assert.Equal(t, status.Tick{Kind: status.Poison, Amount: -8, Remaining: 1}, ticks[0])
	assert.Equal(t, status.Tick{Kind: status.Regeneration, Amount: 6, Remaining: 0, Expired: true}, ticks[1])
	assert.Equal(t, status.Tick{Kind: status.Haste, Amount: 0, Remaining: 2}, ticks[2])
	assert.False(t, s.Has(status.Regeneration))
	assert.Equal(t, 2, s.Len())
}

func TestSet_Tick_PreservesOrder(t *testing.T) {
	s := status.NewSet()
	kinds := []status.Kind{status.Shock, status.Blind, status.Burn}
	for _, k := range kinds {
		_, _ = s.Apply(status.Effect{Kind: k, Duration: 2, Magnitude: 1})
	}
	s.Tick()
	all := s.All()
	require.Len(t, all, 3)
	for i, k := range kinds {
		assert.Equal(t, k, all[i].Kind)
	}
}

// TestSet_Tick_Property verifies duration decreases by exactly 1 and the effect
// is removed exactly when duration reaches 0.
func TestSet_Tick_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kinds := status.AllKinds()
		k := kinds[rapid.IntRange(0, len(kinds)-1).Draw(rt, "kind")]
		d := rapid.IntRange(1, 20).Draw(rt, "duration")
		s := status.NewSet()
		_, err := s.Apply(status.Effect{Kind: k, Duration: d, Magnitude: 2})
		require.NoError(rt, err)
		for want := d - 1; want >= 0; want-- {
			ticks := s.Tick()
			require.Len(rt, ticks, 1)
			assert.Equal(rt, want, ticks[0].Remaining)
			assert.Equal(rt, want == 0, ticks[0].Expired)
			got, ok := s.Get(k)
			if want == 0 {
				assert.False(rt, ok)
			} else {
				require.True(rt, ok)
				assert.Equal(rt, want, got.Duration)
			}
		}
		assert.Empty(rt, s.Tick())
	})
}

func TestSet_Absorb(t *testing.T) {
	s := status.NewSet()
	_, _ = s.Apply(status.Effect{Kind: status.Shield, Duration: 3, Magnitude: 10})

	rem, abs := s.Absorb(4)
	assert.Equal(t, 0, rem)
	assert.Equal(t, 4, abs)
	got, _ := s.Get(status.Shield)
	assert.InDelta(t, 6, got.Magnitude, 1e-9)

	rem, abs = s.Absorb(9)
	assert.Equal(t, 3, rem)
	assert.Equal(t, 6, abs)
	assert.False(t, s.Has(status.Shield))
}

func TestSet_Absorb_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pool := rapid.IntRange(1, 100).Draw(rt, "pool")
		dmg := rapid.IntRange(0, 200).Draw(rt, "dmg")
		s := status.NewSet()
		_, _ = s.Apply(status.Effect{Kind: status.Shield, Duration: 2, Magnitude: float64(pool)})
		rem, abs := s.Absorb(dmg)
		assert.Equal(rt, dmg, rem+abs)
		assert.LessOrEqual(rt, abs, pool)
	})
}

func TestSet_RemoveAndClone(t *testing.T) {
	s := status.NewSet()
	_, _ = s.Apply(status.Effect{Kind: status.Stun, Duration: 1})
	_, _ = s.Apply(status.Effect{Kind: status.Slow, Duration: 2, Magnitude: 1})
	c := s.Clone()
	s.Remove(status.Stun)
	s.Remove(status.Freeze)
	assert.False(t, s.Has(status.Stun))
	assert.True(t, c.Has(status.Stun))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestKind_Categories(t *testing.T) {
	assert.Len(t, status.AllKinds(), 17)
	assert.Equal(t, status.DamageOverTime, status.Poison.Category())
	assert.Equal(t, status.HealOverTime, status.Blessing.Category())
	assert.Equal(t, status.Buff, status.Shield.Category())
	assert.Equal(t, status.Debuff, status.Freeze.Category())
	assert.True(t, status.Stun.IsControl())
	assert.True(t, status.Freeze.IsControl())
	assert.False(t, status.Slow.IsControl())
	assert.Equal(t, "heal_over_time", status.HealOverTime.String())

	k, err := status.ParseKind("crit_up")
	require.NoError(t, err)
	assert.Equal(t, status.CritUp, k)
	_, err = status.ParseKind("plague")
	assert.Error(t, err)
}
