package grid

import (
	"container/heap"
	"sort"
)

type node struct {
	pos  Pos
	cost int
	seq  int
}

// frontier is a min-heap on cost; seq breaks ties so expansion order is stable.
type frontier []node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}

// search runs a cost-bounded Dijkstra from origin over passable cells.
// stop, if non-nil, ends the search once the returned position is settled.
func (g *Grid) search(origin Pos, budget int, stop *Pos) (map[Pos]int, map[Pos]Pos) {
	dist := map[Pos]int{origin: 0}
	prev := map[Pos]Pos{}
	f := &frontier{{pos: origin}}
	seq := 1
	for f.Len() > 0 {
		cur := heap.Pop(f).(node)
		if cur.cost > dist[cur.pos] {
			continue
		}
		if stop != nil && cur.pos == *stop {
			break
		}
		for _, n := range g.Neighbors(cur.pos) {
			if !g.Passable(n) {
				continue
			}
			c := cur.cost + g.rules.cost(g.at(n).Terrain)
			if c > budget {
				continue
			}
			if old, seen := dist[n]; seen && old <= c {
				continue
			}
			dist[n] = c
			prev[n] = cur.pos
			heap.Push(f, node{pos: n, cost: c, seq: seq})
			seq++
		}
	}
	return dist, prev
}

func sortPositions(ps []Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

// Reachable returns every free walkable cell that can be entered from origin
// spending at most budget movement, sorted row-major. The origin is excluded.
//
// Postcondition: Off-grid origins and budgets < 1 yield an empty result.
func (g *Grid) Reachable(origin Pos, budget int) []Pos {
	if !g.InBounds(origin) || budget < 1 {
		return nil
	}
	dist, _ := g.search(origin, budget, nil)
	out := make([]Pos, 0, len(dist))
	for p := range dist {
		if p != origin {
			out = append(out, p)
		}
	}
	sortPositions(out)
	return out
}

// Attackable returns every on-grid, walkable-terrain cell within rng of origin
// under Chebyshev distance, sorted row-major. The origin is excluded.
func (g *Grid) Attackable(origin Pos, rng int) []Pos {
	if !g.InBounds(origin) || rng < 1 {
		return nil
	}
	var out []Pos
	for y := origin.Y - rng; y <= origin.Y+rng; y++ {
		for x := origin.X - rng; x <= origin.X+rng; x++ {
			p := Pos{X: x, Y: y}
			if p == origin || !g.Walkable(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Path returns the cheapest sequence of cells from origin to goal spending at most
// budget movement. The result excludes origin and ends with goal; each step is
// adjacent to the previous one and every cell is free walkable ground.
//
// Postcondition: origin == goal yields (empty, true); no path within budget yields (nil, false).
func (g *Grid) Path(origin, goal Pos, budget int) ([]Pos, bool) {
	if !g.InBounds(origin) || !g.InBounds(goal) {
		return nil, false
	}
	if origin == goal {
		return []Pos{}, true
	}
	if !g.Passable(goal) {
		return nil, false
	}
	dist, prev := g.search(origin, budget, &goal)
	if _, ok := dist[goal]; !ok {
		return nil, false
	}
	var rev []Pos
	for p := goal; p != origin; p = prev[p] {
		rev = append(rev, p)
	}
	out := make([]Pos, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out, true
}

// PathCost returns the movement spent walking path from its implicit origin.
func (g *Grid) PathCost(path []Pos) int {
	total := 0
	for _, p := range path {
		if g.InBounds(p) {
			total += g.rules.cost(g.at(p).Terrain)
		}
	}
	return total
}

// Connected reports whether b can be reached from a over walkable ground,
// ignoring occupancy and movement budget.
func (g *Grid) Connected(a, b Pos) bool {
	if !g.Walkable(a) || !g.Walkable(b) {
		return false
	}
	seen := map[Pos]bool{a: true}
	queue := []Pos{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			return true
		}
		for _, n := range g.Neighbors(cur) {
			if !seen[n] && g.Walkable(n) {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// Approach returns the reachable cell (within budget) that minimises the
// Chebyshev distance to target, preferring the cheapest such cell. It returns
// (origin, false) when no reachable cell is closer than origin.
func (g *Grid) Approach(origin, target Pos, budget int) (Pos, bool) {
	if !g.InBounds(origin) || budget < 1 {
		return origin, false
	}
	dist, _ := g.search(origin, budget, nil)
	best, bestD, bestC := origin, origin.Distance(target), 0
	cands := make([]Pos, 0, len(dist))
	for p := range dist {
		cands = append(cands, p)
	}
	sortPositions(cands)
	for _, p := range cands {
		d := p.Distance(target)
		c := dist[p]
		if d < bestD || (d == bestD && p != origin && best != origin && c < bestC) {
			best, bestD, bestC = p, d, c
		}
	}
	return best, best != origin
}
