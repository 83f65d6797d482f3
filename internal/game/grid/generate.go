package grid

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// generateAttempts bounds rerolls before a corridor is carved between the starts.
const generateAttempts = 8

// Generate builds a width × height grid whose cells become non-plain terrain with
// probability complexity, weighted by each kind's Weight. Start cells are always
// plain, and every pair of starts is left connected over walkable ground.
//
// Precondition: rules and src must be non-nil; complexity in [0, 1].
// Postcondition: Returns an error iff a start is off the grid or the size is not positive.
func Generate(width, height int, complexity float64, rules *Rules, src dice.Source, starts ...Pos) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("generate: invalid size %dx%d", width, height)
	}
	isStart := make(map[Pos]bool, len(starts))
	for _, s := range starts {
		if s.X < 0 || s.Y < 0 || s.X >= width || s.Y >= height {
			return nil, fmt.Errorf("generate: start %s out of bounds", s)
		}
		isStart[s] = true
	}
	kinds, weights, total := rules.weighted()

	var g *Grid
	for attempt := 0; attempt < generateAttempts; attempt++ {
		g = New(width, height, rules)
		if total > 0 {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					p := Pos{X: x, Y: y}
					if isStart[p] || !dice.Chance(src, complexity) {
						continue
					}
					g.at(p).Terrain = pickWeighted(src, kinds, weights, total)
				}
			}
		}
		if startsConnected(g, starts) {
			return g, nil
		}
	}
	for i := 1; i < len(starts); i++ {
		carve(g, starts[0], starts[i])
	}
	return g, nil
}

func pickWeighted(src dice.Source, kinds []Terrain, weights []int, total int) Terrain {
	r := src.Intn(total)
	for i, w := range weights {
		if r < w {
			return kinds[i]
		}
		r -= w
	}
	return kinds[len(kinds)-1]
}

func startsConnected(g *Grid, starts []Pos) bool {
	for i := 1; i < len(starts); i++ {
		if !g.Connected(starts[0], starts[i]) {
			return false
		}
	}
	return true
}

// carve walks a diagonal-first line from a to b, turning unwalkable cells into plain.
func carve(g *Grid, a, b Pos) {
	p := a
	for {
		if !g.rules.walkable(g.at(p).Terrain) {
			g.at(p).Terrain = Plain
		}
		if p == b {
			return
		}
		p.X += sign(b.X - p.X)
		p.Y += sign(b.Y - p.Y)
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
