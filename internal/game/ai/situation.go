package ai

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// Situation is the tactical context the engine scores against.
type Situation struct {
	SelfHealth     float64
	OpponentHealth float64
	SelfMana       float64
	Mana           int
	Distance       int
	AttackRange    int
	CanAct         bool
	// Usable holds the skills that are off cooldown, affordable, and in reach, in slot order.
	Usable []*combat.SkillDef
}

// Observe builds a Situation for self facing opp.
//
// Precondition: self and opp must be non-nil.
// Postcondition: Usable excludes every skill on cooldown, too expensive, or out of reach.
func Observe(self, opp *combat.Fighter) Situation {
	s := Situation{
		SelfHealth:     self.HealthFraction(),
		OpponentHealth: opp.HealthFraction(),
		SelfMana:       self.ManaFraction(),
		Mana:           self.Mana,
		Distance:       self.Position.Distance(opp.Position),
		AttackRange:    self.AttackRange,
		CanAct:         self.CanAct(),
	}
	for _, slot := range self.UsableSkills() {
		if _, err := combat.CheckSkill(self, opp, slot.Def.ID); err != nil {
			continue
		}
		s.Usable = append(s.Usable, slot.Def)
	}
	return s
}

// InReach reports whether a basic attack can land.
func (s Situation) InReach() bool {
	return s.Distance <= s.AttackRange
}

// damagePower returns the summed damage magnitude of def's enemy-targeted damage effects.
func damagePower(def *combat.SkillDef) float64 {
	var p float64
	for _, e := range def.Effects {
		if e.Kind == combat.EffectDamage && e.Target == combat.TargetEnemy {
			p += e.Magnitude
		}
	}
	return p
}

var protective = map[status.Kind]bool{
	status.Regeneration: true,
	status.Blessing:     true,
	status.Shield:       true,
	status.DefenseUp:    true,
}

// restorative reports whether def heals or protects its caster.
func restorative(def *combat.SkillDef) bool {
	for _, e := range def.Effects {
		if e.Target != combat.TargetSelf {
			continue
		}
		if e.Kind == combat.EffectHeal || (e.Kind == combat.EffectStatus && protective[e.Status]) {
			return true
		}
	}
	return false
}
