// Package combat implements the fighter model, damage resolution, and skill
// effects of the arena combat core.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// SkillSlot is one skill known by a fighter together with its remaining cooldown.
type SkillSlot struct {
	Def      *SkillDef
	Cooldown int
}

// Ready reports whether the skill is off cooldown.
func (s *SkillSlot) Ready() bool { return s.Cooldown == 0 }

// Fighter is one combat participant.
//
// Invariant: 0 <= Health <= MaxHealth; 0 <= Mana <= MaxMana; every skill cooldown >= 0.
type Fighter struct {
	ID             string
	Name           string
	Class          string
	Level          int
	Health         int
	MaxHealth      int
	Mana           int
	MaxMana        int
	Strength       int
	Defense        int
	CritChance     float64
	CritMultiplier float64
	ManaRegen      int
	AttackRange    int
	MoveSpeed      int
	// DamageMultiplier scales all outgoing damage; set from the difficulty table.
	DamageMultiplier float64
	Position         grid.Pos
	Effects          *status.Set
	Skills           []*SkillSlot
	// Defending is set by the defend action and cleared at the start of the owner's next turn.
	Defending bool
}

// OccupantID returns the id the fighter is known by on the grid.
func (f *Fighter) OccupantID() string { return f.ID }

// AdjustVitals applies terrain health and mana deltas, clamped to the fighter's bounds.
//
// Postcondition: Returns the deltas actually applied; health and mana invariants hold.
func (f *Fighter) AdjustVitals(health, mana int) (int, int) {
	var dh, dm int
	if health < 0 {
		dh = -f.LoseHealth(-health)
	} else {
		dh = f.Heal(health)
	}
	if mana < 0 {
		before := f.Mana
		f.SpendMana(-mana)
		dm = f.Mana - before
	} else {
		dm = f.RestoreMana(mana)
	}
	return dh, dm
}

// IsAlive reports whether the fighter has health remaining.
func (f *Fighter) IsAlive() bool { return f.Health > 0 }

// HealthFraction returns Health / MaxHealth in [0, 1].
func (f *Fighter) HealthFraction() float64 {
	if f.MaxHealth <= 0 {
		return 0
	}
	return float64(f.Health) / float64(f.MaxHealth)
}

// ManaFraction returns Mana / MaxMana in [0, 1].
func (f *Fighter) ManaFraction() float64 {
	if f.MaxMana <= 0 {
		return 0
	}
	return float64(f.Mana) / float64(f.MaxMana)
}

// LoseHealth subtracts amount from Health directly, bypassing shields, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Returns the health actually removed; Health >= 0.
func (f *Fighter) LoseHealth(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > f.Health {
		amount = f.Health
	}
	f.Health -= amount
	return amount
}

// TakeDamage drains amount through any shield, then from Health.
//
// Precondition: amount >= 0.
// Postcondition: dealt + absorbed <= amount; Health >= 0.
func (f *Fighter) TakeDamage(amount int) (dealt, absorbed int) {
	rem, absorbed := f.Effects.Absorb(amount)
	return f.LoseHealth(rem), absorbed
}

// Heal adds amount to Health, capped at MaxHealth.
//
// Postcondition: Returns the health actually restored; Health <= MaxHealth.
func (f *Fighter) Heal(amount int) int {
	if amount <= 0 || f.Health <= 0 {
		return 0
	}
	if f.Health+amount > f.MaxHealth {
		amount = f.MaxHealth - f.Health
	}
	f.Health += amount
	return amount
}

// RestoreMana adds amount to Mana, capped at MaxMana.
//
// Postcondition: Returns the mana actually restored; Mana <= MaxMana.
func (f *Fighter) RestoreMana(amount int) int {
	if amount <= 0 {
		return 0
	}
	if f.Mana+amount > f.MaxMana {
		amount = f.MaxMana - f.Mana
	}
	f.Mana += amount
	return amount
}

// RegenerateMana adds the fighter's regen rate, capped at MaxMana.
//
// Postcondition: Returns the mana actually restored.
func (f *Fighter) RegenerateMana() int {
	return f.RestoreMana(f.ManaRegen)
}

// SpendMana subtracts cost, flooring at zero. It does not reject insufficiency;
// callers validate affordability first.
//
// Postcondition: Mana >= 0.
func (f *Fighter) SpendMana(cost int) {
	if cost <= 0 {
		return
	}
	f.Mana -= cost
	if f.Mana < 0 {
		f.Mana = 0
	}
}

// CanAct reports whether no control effect is active.
func (f *Fighter) CanAct() bool {
	return !status.IsControlled(f.Effects)
}

// TickEffects processes every active effect once: damage and heal over time change
// health directly, every duration decrements, and expired effects are removed.
//
// Postcondition: Returns one log line per effect processed, in application order.
func (f *Fighter) TickEffects() []string {
	ticks := f.Effects.Tick()
	lines := make([]string, 0, len(ticks))
	for _, t := range ticks {
		var line string
		switch {
		case t.Amount < 0:
			lost := f.LoseHealth(-t.Amount)
			line = fmt.Sprintf("%s takes %d %s damage.", f.Name, lost, t.Kind)
		case t.Amount > 0:
			healed := f.Heal(t.Amount)
			line = fmt.Sprintf("%s recovers %d health from %s.", f.Name, healed, t.Kind)
		default:
			line = fmt.Sprintf("%s is affected by %s.", f.Name, t.Kind)
		}
		if t.Expired {
			line += fmt.Sprintf(" %s wears off.", t.Kind)
		} else {
			line += fmt.Sprintf(" (%d turns left)", t.Remaining)
		}
		lines = append(lines, line)
	}
	return lines
}

// EffectiveStrength returns Strength scaled by active buffs and debuffs.
func (f *Fighter) EffectiveStrength() float64 {
	return float64(f.Strength) * status.StrengthMultiplier(f.Effects)
}

// EffectiveDefense returns Defense scaled by buffs, the defend stance, and the
// terrain defense percent of the fighter's cell.
//
// Postcondition: Returns >= 0.
func (f *Fighter) EffectiveDefense(defendBonus float64, terrainPercent int) int {
	d := float64(f.Defense) * status.DefenseMultiplier(f.Effects)
	if f.Defending {
		d *= 1 + defendBonus
	}
	d *= 1 + float64(terrainPercent)/100
	if d < 0 {
		return 0
	}
	return int(d)
}

// EffectiveCritChance returns CritChance plus crit_up, clamped to [0, 1].
func (f *Fighter) EffectiveCritChance() float64 {
	c := f.CritChance + status.CritBonus(f.Effects)
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// EffectiveMoveSpeed returns MoveSpeed adjusted by haste and slow, floored at zero.
func (f *Fighter) EffectiveMoveSpeed() int {
	m := f.MoveSpeed + status.MoveDelta(f.Effects)
	if m < 0 {
		return 0
	}
	return m
}

// Skill returns the slot for skill id, or nil if the fighter does not know it.
func (f *Fighter) Skill(id string) *SkillSlot {
	for _, s := range f.Skills {
		if s.Def.ID == id {
			return s
		}
	}
	return nil
}

// UsableSkills returns the skills that are off cooldown and affordable, in slot order.
func (f *Fighter) UsableSkills() []*SkillSlot {
	var out []*SkillSlot
	for _, s := range f.Skills {
		if s.Ready() && s.Def.ManaCost <= f.Mana {
			out = append(out, s)
		}
	}
	return out
}

// TickCooldowns decrements every non-zero cooldown by one.
//
// Postcondition: every cooldown >= 0.
func (f *Fighter) TickCooldowns() {
	f.ReduceCooldowns(1)
}

// ReduceCooldowns lowers every cooldown by n, flooring at zero.
func (f *Fighter) ReduceCooldowns(n int) {
	if n <= 0 {
		return
	}
	for _, s := range f.Skills {
		s.Cooldown -= n
		if s.Cooldown < 0 {
			s.Cooldown = 0
		}
	}
}

// Clone returns a deep copy of f. Skill definitions are shared.
func (f *Fighter) Clone() *Fighter {
	c := *f
	c.Effects = f.Effects.Clone()
	c.Skills = make([]*SkillSlot, len(f.Skills))
	for i, s := range f.Skills {
		ns := *s
		c.Skills[i] = &ns
	}
	return &c
}

// Validate checks the fighter invariants.
//
// Postcondition: Returns nil iff health, mana, and cooldowns are within bounds.
func (f *Fighter) Validate() error {
	if f.Health < 0 || f.Health > f.MaxHealth {
		return fmt.Errorf("fighter %q: health %d outside [0, %d]", f.ID, f.Health, f.MaxHealth)
	}
	if f.Mana < 0 || f.Mana > f.MaxMana {
		return fmt.Errorf("fighter %q: mana %d outside [0, %d]", f.ID, f.Mana, f.MaxMana)
	}
	for _, s := range f.Skills {
		if s.Cooldown < 0 {
			return fmt.Errorf("fighter %q: skill %q cooldown %d < 0", f.ID, s.Def.ID, s.Cooldown)
		}
	}
	for _, e := range f.Effects.All() {
		if e.Duration < 0 {
			return fmt.Errorf("fighter %q: %s duration %d < 0", f.ID, e.Kind, e.Duration)
		}
	}
	return nil
}
