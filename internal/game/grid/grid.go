// Package grid implements the tactical arena: terrain cells, occupancy,
// movement, range queries, pathfinding, and terrain-driven effects.
package grid

import "fmt"

// Pos is a cell coordinate. X grows east, Y grows south.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the "(x,y)" form of p.
func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Distance returns the Chebyshev distance between p and q, so a diagonal step costs 1.
//
// Postcondition: Distance(p, q) == Distance(q, p) >= 0.
func (p Pos) Distance(q Pos) int {
	dx := p.X - q.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - q.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Cell is one square of the arena.
type Cell struct {
	Terrain Terrain `json:"terrain"`
	// Occupant is the id of the fighter standing on the cell, or "".
	Occupant string `json:"occupant,omitempty"`
}

type firedKey struct {
	occupant string
	trigger  Trigger
}

// Grid is a width × height arena owned by one encounter.
// It is not safe for concurrent use; the caller must serialise access.
type Grid struct {
	width  int
	height int
	cells  []Cell
	rules  *Rules
	// fired records the last turn on which each (occupant, trigger) pair applied.
	fired map[firedKey]int
}

// New creates a grid of plain cells.
//
// Precondition: width >= 1, height >= 1, rules non-nil.
func New(width, height int, rules *Rules) *Grid {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i].Terrain = Plain
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  cells,
		rules:  rules,
		fired:  make(map[firedKey]int),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Rules returns the terrain table the grid was built with.
func (g *Grid) Rules() *Rules { return g.rules }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) at(p Pos) *Cell {
	return &g.cells[p.Y*g.width+p.X]
}

// Cell returns the cell at p, or (Cell{}, false) when p is off the grid.
func (g *Grid) Cell(p Pos) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return *g.at(p), true
}

// Rows returns a copy of the cells, row-major, for rendering by callers.
func (g *Grid) Rows() [][]Cell {
	out := make([][]Cell, g.height)
	for y := 0; y < g.height; y++ {
		out[y] = make([]Cell, g.width)
		copy(out[y], g.cells[y*g.width:(y+1)*g.width])
	}
	return out
}

// SetTerrain changes the terrain of p.
//
// Postcondition: Returns an error iff p is off the grid or t is unknown.
func (g *Grid) SetTerrain(p Pos, t Terrain) error {
	if !g.InBounds(p) {
		return fmt.Errorf("set terrain: %s out of bounds", p)
	}
	if !t.Valid() {
		return fmt.Errorf("set terrain: unknown terrain %q", t)
	}
	g.at(p).Terrain = t
	return nil
}

// Walkable reports whether a fighter could stand on p, ignoring occupancy.
func (g *Grid) Walkable(p Pos) bool {
	return g.InBounds(p) && g.rules.walkable(g.at(p).Terrain)
}

// Passable reports whether p is walkable and unoccupied.
func (g *Grid) Passable(p Pos) bool {
	return g.Walkable(p) && g.at(p).Occupant == ""
}

// Neighbors returns the in-bounds cells adjacent to p in all eight directions.
func (g *Grid) Neighbors(p Pos) []Pos {
	out := make([]Pos, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			q := Pos{X: p.X + dx, Y: p.Y + dy}
			if g.InBounds(q) {
				out = append(out, q)
			}
		}
	}
	return out
}

// Place puts occupant id on p.
//
// Postcondition: Returns an error iff p is not passable.
func (g *Grid) Place(id string, p Pos) error {
	if !g.Passable(p) {
		return fmt.Errorf("place %q: %s is not free walkable ground", id, p)
	}
	g.at(p).Occupant = id
	return nil
}

// Move vacates from and occupies to as one step.
//
// Precondition: the cell at from holds id.
// Postcondition: On success from is empty and to holds id; on error the grid is unchanged.
func (g *Grid) Move(id string, from, to Pos) error {
	if !g.InBounds(from) || g.at(from).Occupant != id {
		return fmt.Errorf("move %q: not at %s", id, from)
	}
	if from == to {
		return nil
	}
	if !g.Passable(to) {
		return fmt.Errorf("move %q: %s is not free walkable ground", id, to)
	}
	g.at(from).Occupant = ""
	g.at(to).Occupant = id
	return nil
}

// Modifiers returns the combat modifiers of the terrain at p.
// Off-grid positions yield zero modifiers.
func (g *Grid) Modifiers(p Pos) Modifiers {
	if !g.InBounds(p) {
		return Modifiers{}
	}
	d, ok := g.rules.Def(g.at(p).Terrain)
	if !ok {
		return Modifiers{}
	}
	return Modifiers{DamagePercent: d.DamagePercent, DefensePercent: d.DefensePercent}
}
