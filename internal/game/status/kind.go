// Package status models the timed effects that can be applied to a fighter:
// damage and heal over time, buffs, debuffs, and action-suppressing controls.
package status

import "fmt"

// Kind identifies one of the seventeen status effects.
type Kind string

const (
	Poison       Kind = "poison"
	Burn         Kind = "burn"
	Bleed        Kind = "bleed"
	Shock        Kind = "shock"
	Regeneration Kind = "regeneration"
	Blessing     Kind = "blessing"
	AttackUp     Kind = "attack_up"
	DefenseUp    Kind = "defense_up"
	CritUp       Kind = "crit_up"
	Haste        Kind = "haste"
	Shield       Kind = "shield"
	Weaken       Kind = "weaken"
	Vulnerable   Kind = "vulnerable"
	Slow         Kind = "slow"
	Blind        Kind = "blind"
	Stun         Kind = "stun"
	Freeze       Kind = "freeze"
)

// Category groups kinds by how they act on their owner.
type Category int

const (
	DamageOverTime Category = iota
	HealOverTime
	Buff
	Debuff
)

// String returns the content-file name of the category.
func (c Category) String() string {
	switch c {
	case DamageOverTime:
		return "damage_over_time"
	case HealOverTime:
		return "heal_over_time"
	case Buff:
		return "buff"
	case Debuff:
		return "debuff"
	default:
		return "unknown"
	}
}

var kindCategory = map[Kind]Category{
	Poison:       DamageOverTime,
	Burn:         DamageOverTime,
	Bleed:        DamageOverTime,
	Shock:        DamageOverTime,
	Regeneration: HealOverTime,
	Blessing:     HealOverTime,
	AttackUp:     Buff,
	DefenseUp:    Buff,
	CritUp:       Buff,
	Haste:        Buff,
	Shield:       Buff,
	Weaken:       Debuff,
	Vulnerable:   Debuff,
	Slow:         Debuff,
	Blind:        Debuff,
	Stun:         Debuff,
	Freeze:       Debuff,
}

// AllKinds returns every kind in declaration order.
//
// Postcondition: len(result) == 17.
func AllKinds() []Kind {
	return []Kind{
		Poison, Burn, Bleed, Shock,
		Regeneration, Blessing,
		AttackUp, DefenseUp, CritUp, Haste, Shield,
		Weaken, Vulnerable, Slow, Blind, Stun, Freeze,
	}
}

// ParseKind converts a content-file name into a Kind.
//
// Postcondition: Returns an error iff s names no known kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindCategory[k]; !ok {
		return "", fmt.Errorf("unknown status kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindCategory[k]
	return ok
}

// Category returns the category of k.
//
// Precondition: k.Valid().
func (k Kind) Category() Category {
	return kindCategory[k]
}

// IsControl reports whether k suppresses its owner's ability to act.
func (k Kind) IsControl() bool {
	return k == Stun || k == Freeze
}
