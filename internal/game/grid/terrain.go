package grid

import (
	"fmt"
	"strings"
)

// Terrain identifies a cell's ground type.
type Terrain string

const (
	Plain         Terrain = "plain"
	HighGround    Terrain = "high_ground"
	Forest        Terrain = "forest"
	Water         Terrain = "water"
	Wall          Terrain = "wall"
	Lava          Terrain = "lava"
	Ice           Terrain = "ice"
	Trap          Terrain = "trap"
	HealingShrine Terrain = "healing_shrine"
	ManaWell      Terrain = "mana_well"
)

// AllTerrain returns every terrain kind in declaration order.
func AllTerrain() []Terrain {
	return []Terrain{Plain, HighGround, Forest, Water, Wall, Lava, Ice, Trap, HealingShrine, ManaWell}
}

// Valid reports whether t is a known terrain kind.
func (t Terrain) Valid() bool {
	for _, k := range AllTerrain() {
		if k == t {
			return true
		}
	}
	return false
}

// Delta is a periodic change to an occupant's health and mana.
type Delta struct {
	Health int `yaml:"health"`
	Mana   int `yaml:"mana"`
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool { return d.Health == 0 && d.Mana == 0 }

// TerrainDef is the static definition of a terrain kind, loaded from content.
type TerrainDef struct {
	Kind     Terrain `yaml:"kind"`
	Name     string  `yaml:"name"`
	Walkable bool    `yaml:"walkable"`
	// MoveCost is the budget spent to enter the cell. Must be >= 1 when Walkable.
	MoveCost       int    `yaml:"move_cost"`
	DamagePercent  int    `yaml:"damage_percent"`
	DefensePercent int    `yaml:"defense_percent"`
	OnEnter        *Delta `yaml:"on_enter"`
	OnStay         *Delta `yaml:"on_stay"`
	// Weight is the relative chance of the kind being picked for a non-plain cell.
	Weight int `yaml:"weight"`
}

// Modifiers are the combat stat adjustments granted by a cell.
type Modifiers struct {
	DamagePercent  int
	DefensePercent int
}

// Rules is the read-only terrain table shared by every grid.
type Rules struct {
	defs map[Terrain]*TerrainDef
}

// NewRules validates defs and builds a Rules table.
//
// Postcondition: Returns an error describing every violation when a kind is
// unknown or duplicated, plain is absent or unwalkable, or a walkable kind has
// MoveCost < 1.
func NewRules(defs []*TerrainDef) (*Rules, error) {
	r := &Rules{defs: make(map[Terrain]*TerrainDef, len(defs))}
	var errs []string
	for _, d := range defs {
		if !d.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("unknown terrain kind %q", d.Kind))
			continue
		}
		if _, dup := r.defs[d.Kind]; dup {
			errs = append(errs, fmt.Sprintf("duplicate terrain kind %q", d.Kind))
			continue
		}
		if d.Walkable && d.MoveCost < 1 {
			errs = append(errs, fmt.Sprintf("terrain %q: move_cost must be >= 1, got %d", d.Kind, d.MoveCost))
		}
		if d.Weight < 0 {
			errs = append(errs, fmt.Sprintf("terrain %q: weight must be >= 0, got %d", d.Kind, d.Weight))
		}
		r.defs[d.Kind] = d
	}
	if p, ok := r.defs[Plain]; !ok || !p.Walkable {
		errs = append(errs, "terrain table must define a walkable plain")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("terrain validation failed: %s", strings.Join(errs, "; "))
	}
	return r, nil
}

// Def returns the definition for t, or (nil, false) if not found.
func (r *Rules) Def(t Terrain) (*TerrainDef, bool) {
	d, ok := r.defs[t]
	return d, ok
}

func (r *Rules) walkable(t Terrain) bool {
	d, ok := r.defs[t]
	return ok && d.Walkable
}

func (r *Rules) cost(t Terrain) int {
	if d, ok := r.defs[t]; ok && d.MoveCost > 0 {
		return d.MoveCost
	}
	return 1
}

// weighted returns the non-plain kinds eligible for generation with their weights,
// in declaration order.
func (r *Rules) weighted() ([]Terrain, []int, int) {
	var kinds []Terrain
	var weights []int
	total := 0
	for _, k := range AllTerrain() {
		if k == Plain {
			continue
		}
		d, ok := r.defs[k]
		if !ok || d.Weight <= 0 {
			continue
		}
		kinds = append(kinds, k)
		weights = append(weights, d.Weight)
		total += d.Weight
	}
	return kinds, weights, total
}
