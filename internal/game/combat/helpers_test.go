package combat_test

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// seqSource returns vals in order, clamped to n-1, then repeats the last value.
type seqSource struct {
	vals  []int
	calls int
}

func (s *seqSource) Intn(n int) int {
	v := 0
	if len(s.vals) > 0 {
		i := s.calls
		if i >= len(s.vals) {
			i = len(s.vals) - 1
		}
		v = s.vals[i]
	}
	s.calls++
	if v >= n {
		return n - 1
	}
	return v
}

// noMiss is a draw that never lands under any miss threshold below 1.
const noMiss = 9999

func newFighter(id string, pos grid.Pos) *combat.Fighter {
	return &combat.Fighter{
		ID:               id,
		Name:             id,
		Level:            1,
		Health:           100,
		MaxHealth:        100,
		Mana:             50,
		MaxMana:          50,
		Strength:         20,
		Defense:          10,
		CritChance:       0,
		CritMultiplier:   2,
		ManaRegen:        5,
		AttackRange:      1,
		MoveSpeed:        3,
		DamageMultiplier: 1,
		Position:         pos,
		Effects:          status.NewSet(),
	}
}

func testStatuses() *status.Registry {
	reg := status.NewRegistry()
	for _, k := range status.AllKinds() {
		_ = reg.Register(&status.Def{Kind: k, Name: string(k), MaxStacks: 3})
	}
	return reg
}

func newResolver(src *seqSource) *combat.Resolver {
	return &combat.Resolver{
		Tuning:   combat.DefaultTuning(),
		Statuses: testStatuses(),
		Src:      src,
	}
}
