package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// Tuning holds the numeric constants of damage resolution.
type Tuning struct {
	MissChance       float64
	NormalMultiplier float64
	RandomMin        int
	RandomMax        int
	DefendBonus      float64
}

// DefaultTuning returns the stock damage constants.
func DefaultTuning() Tuning {
	return Tuning{
		MissChance:       0.10,
		NormalMultiplier: 0.4,
		RandomMin:        0,
		RandomMax:        40,
		DefendBonus:      0.5,
	}
}

// TerrainLookup reports the combat modifiers of a cell. *grid.Grid satisfies it.
type TerrainLookup interface {
	Modifiers(p grid.Pos) grid.Modifiers
}

// Boost is a pending combo bonus applied to the next damage-dealing resolution.
// The zero value changes nothing.
type Boost struct {
	Multiplier float64
	Flat       int
}

// IsZero reports whether b changes nothing.
func (b Boost) IsZero() bool {
	return (b.Multiplier == 0 || b.Multiplier == 1) && b.Flat == 0
}

func (b Boost) apply(d float64) float64 {
	if b.Multiplier > 0 {
		d *= b.Multiplier
	}
	return d + float64(b.Flat)
}

// DamageResult is the outcome of one damage calculation.
type DamageResult struct {
	// Damage is the post-mitigation amount. It is 0 on a miss.
	Damage     int
	IsCritical bool
	Missed     bool
	// PreMitigation is the damage before the defense formula.
	PreMitigation int
	// MitigatedAmount is PreMitigation - Damage.
	MitigatedAmount int
	// Dealt is the health actually removed after shields; Absorbed is what shields took.
	Dealt    int
	Absorbed int
}

// Resolver computes damage and applies skills for one encounter.
// It is not safe for concurrent use; the caller must serialise access.
type Resolver struct {
	Tuning   Tuning
	Terrain  TerrainLookup
	Statuses *status.Registry
	Src      dice.Source
}

func (r *Resolver) terrain(p grid.Pos) grid.Modifiers {
	if r.Terrain == nil {
		return grid.Modifiers{}
	}
	return r.Terrain.Modifiers(p)
}

// Mitigate applies the diminishing-returns defense formula.
//
// Precondition: damage >= 0.
// Postcondition: 0 <= result <= damage; defense <= 0 returns damage unchanged.
func Mitigate(damage, defense int) int {
	if damage <= 0 {
		return 0
	}
	if defense <= 0 {
		return damage
	}
	return damage * 100 / (100 + defense)
}

// BaseDamage returns floor(strength × multiplier + bonus).
//
// Postcondition: monotonically non-decreasing in strength for multiplier >= 0; result >= 0.
func BaseDamage(strength, multiplier float64, bonus int) int {
	d := math.Floor(strength*multiplier + float64(bonus))
	if d < 0 {
		return 0
	}
	return int(d)
}

// scale rolls the critical hit and applies attacker-side multipliers to base.
func (r *Resolver) scale(att *Fighter, base float64, boost Boost) (int, bool) {
	crit := dice.Chance(r.Src, att.EffectiveCritChance())
	d := base
	if crit {
		d = math.Floor(d * att.CritMultiplier)
	}
	if att.DamageMultiplier > 0 {
		d *= att.DamageMultiplier
	}
	d *= 1 + float64(r.terrain(att.Position).DamagePercent)/100
	d = boost.apply(d)
	if d < 0 {
		d = 0
	}
	return int(math.Floor(d)), crit
}

// land mitigates pre against def and applies the result to def's health.
func (r *Resolver) land(def *Fighter, pre int, crit bool) DamageResult {
	defense := def.EffectiveDefense(r.Tuning.DefendBonus, r.terrain(def.Position).DefensePercent)
	post := Mitigate(pre, defense)
	dealt, absorbed := def.TakeDamage(post)
	return DamageResult{
		Damage:          post,
		IsCritical:      crit,
		PreMitigation:   pre,
		MitigatedAmount: pre - post,
		Dealt:           dealt,
		Absorbed:        absorbed,
	}
}

// CheckAttack reports whether att may basic-attack def without changing either.
//
// Postcondition: Returns nil, or an error wrapping ErrDefeated, ErrIncapacitated, or ErrOutOfRange.
func CheckAttack(att, def *Fighter) error {
	if !att.IsAlive() || !def.IsAlive() {
		return fmt.Errorf("attack %s -> %s: %w", att.ID, def.ID, ErrDefeated)
	}
	if !att.CanAct() {
		return fmt.Errorf("attack by %s: %w", att.ID, ErrIncapacitated)
	}
	if d := att.Position.Distance(def.Position); d > att.AttackRange {
		return fmt.Errorf("attack %s -> %s at distance %d (range %d): %w", att.ID, def.ID, d, att.AttackRange, ErrOutOfRange)
	}
	return nil
}

// BasicAttack resolves one basic attack by att against def and applies the damage.
// A miss roll (miss chance plus blind) short-circuits to zero damage. Otherwise
// base = floor(strength × NormalMultiplier + U[RandomMin, RandomMax]), a critical
// roll multiplies by CritMultiplier, attacker multipliers and boost apply, and the
// defense formula mitigates the result.
//
// Precondition: r.Src must be non-nil.
// Postcondition: On error neither fighter is modified and no roll is drawn.
func (r *Resolver) BasicAttack(att, def *Fighter, boost Boost) (DamageResult, error) {
	if err := CheckAttack(att, def); err != nil {
		return DamageResult{}, err
	}
	if dice.Chance(r.Src, r.Tuning.MissChance+status.MissBonus(att.Effects)) {
		return DamageResult{Missed: true}, nil
	}
	bonus := dice.Range(r.Src, r.Tuning.RandomMin, r.Tuning.RandomMax)
	base := BaseDamage(att.EffectiveStrength(), r.Tuning.NormalMultiplier, bonus)
	pre, crit := r.scale(att, float64(base), boost)
	return r.land(def, pre, crit), nil
}

// Narrate renders a damage result as a log line.
func (d DamageResult) Narrate(att, def *Fighter, verb string) string {
	if d.Missed {
		return fmt.Sprintf("%s %s %s but misses.", att.Name, verb, def.Name)
	}
	line := fmt.Sprintf("%s %s %s for %d damage", att.Name, verb, def.Name, d.Damage)
	if d.IsCritical {
		line += " (critical)"
	}
	if d.MitigatedAmount > 0 {
		line += fmt.Sprintf(", %d mitigated", d.MitigatedAmount)
	}
	if d.Absorbed > 0 {
		line += fmt.Sprintf(", %d absorbed by shield", d.Absorbed)
	}
	return line + "."
}
