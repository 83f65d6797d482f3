package grid

// Trigger distinguishes when a terrain effect fires.
type Trigger int

const (
	// OnEnter fires once when an occupant steps onto the cell.
	OnEnter Trigger = iota
	// OnStay fires once at the end of the occupant's turn while stationed on the cell.
	OnStay
)

// String returns the content-file name of the trigger.
func (t Trigger) String() string {
	switch t {
	case OnEnter:
		return "enter"
	case OnStay:
		return "stay"
	default:
		return "unknown"
	}
}

// Occupant is anything a terrain effect can act on.
type Occupant interface {
	OccupantID() string
	// AdjustVitals applies health and mana deltas and returns the amounts actually applied.
	AdjustVitals(health, mana int) (appliedHealth, appliedMana int)
}

// ApplyTerrainEffect fires the periodic effect of the cell at p on occ for trigger.
// Each (occupant, trigger) pair fires at most once per turn.
//
// Precondition: occ must be non-nil.
// Postcondition: fired is false and occ is untouched when p is off the grid, the
// terrain has no effect for trigger, or the pair already fired on turn.
func (g *Grid) ApplyTerrainEffect(occ Occupant, p Pos, trigger Trigger, turn int) (applied Delta, fired bool) {
	if !g.InBounds(p) {
		return Delta{}, false
	}
	d, ok := g.rules.Def(g.at(p).Terrain)
	if !ok {
		return Delta{}, false
	}
	var eff *Delta
	switch trigger {
	case OnEnter:
		eff = d.OnEnter
	case OnStay:
		eff = d.OnStay
	}
	if eff == nil || eff.IsZero() {
		return Delta{}, false
	}
	key := firedKey{occupant: occ.OccupantID(), trigger: trigger}
	if last, seen := g.fired[key]; seen && last == turn {
		return Delta{}, false
	}
	g.fired[key] = turn
	h, m := occ.AdjustVitals(eff.Health, eff.Mana)
	return Delta{Health: h, Mana: m}, true
}
