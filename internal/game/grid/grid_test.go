package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/grid"
)

func testRules(t testing.TB) *grid.Rules {
	t.Helper()
	r, err := grid.NewRules([]*grid.TerrainDef{
		{Kind: grid.Plain, Walkable: true, MoveCost: 1},
		{Kind: grid.HighGround, Walkable: true, MoveCost: 2, DamagePercent: 20, Weight: 2},
		{Kind: grid.Forest, Walkable: true, MoveCost: 2, DefensePercent: 25, Weight: 3},
		{Kind: grid.Water, Walkable: true, MoveCost: 3, DefensePercent: -10, Weight: 2},
		{Kind: grid.Wall, Walkable: false, Weight: 3},
		{Kind: grid.Lava, Walkable: true, MoveCost: 1, OnEnter: &grid.Delta{Health: -10}, OnStay: &grid.Delta{Health: -10}, Weight: 1},
		{Kind: grid.Ice, Walkable: true, MoveCost: 1, DefensePercent: -15, Weight: 1},
		{Kind: grid.Trap, Walkable: true, MoveCost: 1, OnEnter: &grid.Delta{Health: -15}, Weight: 1},
		{Kind: grid.HealingShrine, Walkable: true, MoveCost: 1, OnStay: &grid.Delta{Health: 10}, Weight: 1},
		{Kind: grid.ManaWell, Walkable: true, MoveCost: 1, OnStay: &grid.Delta{Mana: 10}, Weight: 1},
	})
	require.NoError(t, err)
	return r
}

type occupant struct {
	id     string
	health int
	mana   int
}

func (o *occupant) OccupantID() string { return o.id }
func (o *occupant) AdjustVitals(h, m int) (int, int) {
	o.health += h
	o.mana += m
	return h, m
}

func TestPos_Distance(t *testing.T) {
	assert.Equal(t, 0, grid.Pos{X: 1, Y: 1}.Distance(grid.Pos{X: 1, Y: 1}))
	assert.Equal(t, 1, grid.Pos{X: 1, Y: 1}.Distance(grid.Pos{X: 2, Y: 2}))
	assert.Equal(t, 4, grid.Pos{X: 0, Y: 0}.Distance(grid.Pos{X: 4, Y: 2}))
}

func TestNewRules_Validation(t *testing.T) {
	_, err := grid.NewRules([]*grid.TerrainDef{{Kind: grid.Forest, Walkable: true, MoveCost: 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move_cost")
	assert.Contains(t, err.Error(), "walkable plain")

	_, err = grid.NewRules([]*grid.TerrainDef{
		{Kind: grid.Plain, Walkable: true, MoveCost: 1},
		{Kind: "swamp", Walkable: true, MoveCost: 1},
	})
	assert.Error(t, err)
}

func TestGrid_PlaceAndMove(t *testing.T) {
	g := grid.New(4, 4, testRules(t))
	require.NoError(t, g.Place("a", grid.Pos{X: 0, Y: 0}))
	require.NoError(t, g.Place("b", grid.Pos{X: 1, Y: 1}))
	assert.Error(t, g.Place("c", grid.Pos{X: 1, Y: 1}))

	assert.Error(t, g.Move("a", grid.Pos{X: 0, Y: 0}, grid.Pos{X: 1, Y: 1}))
	c, _ := g.Cell(grid.Pos{X: 0, Y: 0})
	assert.Equal(t, "a", c.Occupant, "failed move must leave the grid unchanged")

	require.NoError(t, g.Move("a", grid.Pos{X: 0, Y: 0}, grid.Pos{X: 3, Y: 0}))
	c, _ = g.Cell(grid.Pos{X: 0, Y: 0})
	assert.Empty(t, c.Occupant)
	c, _ = g.Cell(grid.Pos{X: 3, Y: 0})
	assert.Equal(t, "a", c.Occupant)

	assert.Error(t, g.Move("a", grid.Pos{X: 0, Y: 0}, grid.Pos{X: 1, Y: 0}))
}

func TestGrid_CellOutOfRange(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	_, ok := g.Cell(grid.Pos{X: -1, Y: 0})
	assert.False(t, ok)
	_, ok = g.Cell(grid.Pos{X: 3, Y: 0})
	assert.False(t, ok)
	assert.Equal(t, grid.Modifiers{}, g.Modifiers(grid.Pos{X: 9, Y: 9}))
}

func TestGrid_Modifiers(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	require.NoError(t, g.SetTerrain(grid.Pos{X: 1, Y: 1}, grid.Forest))
	assert.Equal(t, grid.Modifiers{DefensePercent: 25}, g.Modifiers(grid.Pos{X: 1, Y: 1}))
	require.NoError(t, g.SetTerrain(grid.Pos{X: 0, Y: 0}, grid.HighGround))
	assert.Equal(t, grid.Modifiers{DamagePercent: 20}, g.Modifiers(grid.Pos{X: 0, Y: 0}))
	assert.Error(t, g.SetTerrain(grid.Pos{X: 5, Y: 5}, grid.Forest))
}

func TestGrid_Reachable_ExcludesOriginAndOccupied(t *testing.T) {
	g := grid.New(5, 5, testRules(t))
	origin := grid.Pos{X: 2, Y: 2}
	require.NoError(t, g.Place("a", origin))
	require.NoError(t, g.Place("b", grid.Pos{X: 3, Y: 2}))
	cells := g.Reachable(origin, 1)
	assert.Len(t, cells, 7)
	assert.NotContains(t, cells, origin)
	assert.NotContains(t, cells, grid.Pos{X: 3, Y: 2})
}

func TestGrid_Reachable_RespectsCostAndWalls(t *testing.T) {
	g := grid.New(5, 1, testRules(t))
	require.NoError(t, g.SetTerrain(grid.Pos{X: 1, Y: 0}, grid.Forest))
	require.NoError(t, g.SetTerrain(grid.Pos{X: 3, Y: 0}, grid.Wall))
	cells := g.Reachable(grid.Pos{X: 0, Y: 0}, 3)
	assert.Equal(t, []grid.Pos{{X: 1, Y: 0}, {X: 2, Y: 0}}, cells)
	assert.Empty(t, g.Reachable(grid.Pos{X: -1, Y: 0}, 3))
}

func TestGrid_Attackable(t *testing.T) {
	g := grid.New(5, 5, testRules(t))
	require.NoError(t, g.SetTerrain(grid.Pos{X: 1, Y: 1}, grid.Wall))
	cells := g.Attackable(grid.Pos{X: 0, Y: 0}, 1)
	assert.ElementsMatch(t, []grid.Pos{{X: 1, Y: 0}, {X: 0, Y: 1}}, cells)
	assert.Len(t, g.Attackable(grid.Pos{X: 2, Y: 2}, 2), 23)
}

func TestGrid_Path_Trivial(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	p, ok := g.Path(grid.Pos{X: 1, Y: 1}, grid.Pos{X: 1, Y: 1}, 0)
	assert.True(t, ok)
	assert.Empty(t, p)
}

func TestGrid_Path_AroundWall(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	for y := 0; y < 2; y++ {
		require.NoError(t, g.SetTerrain(grid.Pos{X: 1, Y: y}, grid.Wall))
	}
	p, ok := g.Path(grid.Pos{X: 0, Y: 0}, grid.Pos{X: 2, Y: 0}, 10)
	require.True(t, ok)
	assert.Equal(t, grid.Pos{X: 2, Y: 0}, p[len(p)-1])
	assert.Contains(t, p, grid.Pos{X: 1, Y: 2})
	assert.Equal(t, len(p), g.PathCost(p))

	_, ok = g.Path(grid.Pos{X: 0, Y: 0}, grid.Pos{X: 2, Y: 0}, 2)
	assert.False(t, ok, "path beyond budget must report no path")
}

// TestGrid_Path_Property verifies paths are contiguous, walkable, and within budget.
func TestGrid_Path_Property(t *testing.T) {
	rules := testRules(t)
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(2, 8).Draw(rt, "w")
		h := rapid.IntRange(2, 8).Draw(rt, "h")
		seed := rapid.Uint64().Draw(rt, "seed")
		from := grid.Pos{X: rapid.IntRange(0, w-1).Draw(rt, "fx"), Y: rapid.IntRange(0, h-1).Draw(rt, "fy")}
		to := grid.Pos{X: rapid.IntRange(0, w-1).Draw(rt, "tx"), Y: rapid.IntRange(0, h-1).Draw(rt, "ty")}
		budget := rapid.IntRange(0, 20).Draw(rt, "budget")

		g, err := grid.Generate(w, h, 0.4, rules, dice.NewSeededSource(seed), from)
		require.NoError(rt, err)
		path, ok := g.Path(from, to, budget)
		if !ok {
			assert.Nil(rt, path)
			return
		}
		if from == to {
			assert.Empty(rt, path)
			return
		}
		prev := from
		for _, p := range path {
			assert.Equal(rt, 1, prev.Distance(p), "steps must be adjacent")
			assert.True(rt, g.Passable(p), "cells must be free walkable ground")
			prev = p
		}
		assert.Equal(rt, to, prev)
		assert.LessOrEqual(rt, g.PathCost(path), budget)
	})
}

func TestGrid_Approach(t *testing.T) {
	g := grid.New(8, 1, testRules(t))
	require.NoError(t, g.Place("a", grid.Pos{X: 0, Y: 0}))
	require.NoError(t, g.Place("b", grid.Pos{X: 7, Y: 0}))
	p, moved := g.Approach(grid.Pos{X: 0, Y: 0}, grid.Pos{X: 7, Y: 0}, 3)
	assert.True(t, moved)
	assert.Equal(t, grid.Pos{X: 3, Y: 0}, p)

	p, moved = g.Approach(grid.Pos{X: 6, Y: 0}, grid.Pos{X: 7, Y: 0}, 3)
	assert.False(t, moved)
	assert.Equal(t, grid.Pos{X: 6, Y: 0}, p)
}

func TestGenerate_StartsPlainAndConnected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		a := grid.Pos{X: 0, Y: 3}
		b := grid.Pos{X: 9, Y: 3}
		g, err := grid.Generate(10, 8, 0.9, testRules(t), dice.NewSeededSource(seed), a, b)
		require.NoError(rt, err)
		ca, _ := g.Cell(a)
		cb, _ := g.Cell(b)
		assert.Equal(rt, grid.Plain, ca.Terrain)
		assert.Equal(rt, grid.Plain, cb.Terrain)
		assert.True(rt, g.Connected(a, b))
	})
}

func TestGenerate_ZeroComplexityIsPlain(t *testing.T) {
	g, err := grid.Generate(4, 3, 0, testRules(t), dice.NewSeededSource(7))
	require.NoError(t, err)
	for _, row := range g.Rows() {
		for _, c := range row {
			assert.Equal(t, grid.Plain, c.Terrain)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := grid.Generate(10, 8, 0.5, testRules(t), dice.NewSeededSource(42))
	require.NoError(t, err)
	b, err := grid.Generate(10, 8, 0.5, testRules(t), dice.NewSeededSource(42))
	require.NoError(t, err)
	assert.Equal(t, a.Rows(), b.Rows())
}

func TestGenerate_BadStart(t *testing.T) {
	_, err := grid.Generate(4, 4, 0.2, testRules(t), dice.NewSeededSource(1), grid.Pos{X: 4, Y: 0})
	assert.Error(t, err)
}

// TestApplyTerrainEffect_EnterAndStay verifies a damaging cell applies its amount once
// for enter and once for stay, and never twice for the same trigger in one turn.
func TestApplyTerrainEffect_EnterAndStay(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	lava := grid.Pos{X: 1, Y: 1}
	require.NoError(t, g.SetTerrain(lava, grid.Lava))
	o := &occupant{id: "p", health: 100}

	d, fired := g.ApplyTerrainEffect(o, lava, grid.OnEnter, 1)
	assert.True(t, fired)
	assert.Equal(t, grid.Delta{Health: -10}, d)
	_, fired = g.ApplyTerrainEffect(o, lava, grid.OnEnter, 1)
	assert.False(t, fired)
	assert.Equal(t, 90, o.health)

	_, fired = g.ApplyTerrainEffect(o, lava, grid.OnStay, 1)
	assert.True(t, fired)
	_, fired = g.ApplyTerrainEffect(o, lava, grid.OnStay, 1)
	assert.False(t, fired)
	assert.Equal(t, 80, o.health)

	_, fired = g.ApplyTerrainEffect(o, lava, grid.OnStay, 2)
	assert.True(t, fired)
	assert.Equal(t, 70, o.health)
}

func TestApplyTerrainEffect_NoEffect(t *testing.T) {
	g := grid.New(3, 3, testRules(t))
	o := &occupant{id: "p", health: 100}
	_, fired := g.ApplyTerrainEffect(o, grid.Pos{X: 0, Y: 0}, grid.OnStay, 1)
	assert.False(t, fired)
	_, fired = g.ApplyTerrainEffect(o, grid.Pos{X: 7, Y: 7}, grid.OnEnter, 1)
	assert.False(t, fired)

	require.NoError(t, g.SetTerrain(grid.Pos{X: 2, Y: 2}, grid.ManaWell))
	d, fired := g.ApplyTerrainEffect(o, grid.Pos{X: 2, Y: 2}, grid.OnStay, 1)
	assert.True(t, fired)
	assert.Equal(t, grid.Delta{Mana: 10}, d)
	assert.Equal(t, "stay", grid.OnStay.String())
}
