package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// Base stats at level 1 and their per-level growth.
const (
	baseHealth         = 100
	healthPerLevel     = 10
	baseMana           = 50
	manaPerLevel       = 5
	baseStrength       = 10
	strengthPerLevel   = 2
	baseDefense        = 5
	defensePerLevel    = 1
	baseCritChance     = 0.05
	baseCritMultiplier = 1.5
	baseManaRegen      = 5
	baseAttackRange    = 1
	baseMoveSpeed      = 3
)

// StatDelta is an additive stat adjustment from a class, equipment, or talents.
type StatDelta struct {
	Health     int     `yaml:"health" json:"health"`
	Mana       int     `yaml:"mana" json:"mana"`
	Strength   int     `yaml:"strength" json:"strength"`
	Defense    int     `yaml:"defense" json:"defense"`
	CritChance float64 `yaml:"crit_chance" json:"crit_chance"`
	ManaRegen  int     `yaml:"mana_regen" json:"mana_regen"`
}

// Add returns the field-wise sum of d and o.
func (d StatDelta) Add(o StatDelta) StatDelta {
	return StatDelta{
		Health:     d.Health + o.Health,
		Mana:       d.Mana + o.Mana,
		Strength:   d.Strength + o.Strength,
		Defense:    d.Defense + o.Defense,
		CritChance: d.CritChance + o.CritChance,
		ManaRegen:  d.ManaRegen + o.ManaRegen,
	}
}

// ClassDef defines a fighter class.
//
// Precondition: ID and Name must be non-empty after loading.
type ClassDef struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Modifiers   StatDelta `yaml:"modifiers"`
	// AttackRange and MoveSpeed override the defaults when positive.
	AttackRange int `yaml:"attack_range"`
	MoveSpeed   int `yaml:"move_speed"`
	// Skills lists the skill ids every member of the class knows.
	Skills []string `yaml:"skills"`
}

// BuildSpec describes a fighter to construct.
type BuildSpec struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
	Level int    `json:"level"`
	// Deltas are precomputed equipment and talent adjustments.
	Deltas []StatDelta `json:"deltas,omitempty"`
}

// Multipliers scale a fighter for a difficulty.
type Multipliers struct {
	Health float64
	Damage float64
}

// SkillLookup resolves a skill id to its definition.
type SkillLookup func(id string) (*SkillDef, bool)

// Build constructs a fighter at full health and mana from spec and class.
// MaxHealth = (100 + 10×(level−1) + deltas) × health multiplier; MaxMana = 50 + 5×(level−1)
// + deltas; Strength = 10 + 2×(level−1) + deltas; Defense = 5 + (level−1) + deltas.
//
// Precondition: class and skills must be non-nil.
// Postcondition: Returns a Fighter with Health == MaxHealth and Mana == MaxMana. An empty
// id or name, or a level below 1, returns an error wrapping ErrInvalidSpec.
func Build(spec BuildSpec, class *ClassDef, skills SkillLookup, mult Multipliers, pos grid.Pos) (*Fighter, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidSpec)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: name of %q must not be empty", ErrInvalidSpec, spec.ID)
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if spec.Level < 1 {
		return nil, fmt.Errorf("%w: level of %q must be >= 1, got %d", ErrInvalidSpec, spec.ID, spec.Level)
	}

	total := class.Modifiers
	for _, d := range spec.Deltas {
		total = total.Add(d)
	}
	lvl := spec.Level - 1

	healthMult := mult.Health
	if healthMult <= 0 {
		healthMult = 1
	}
	damageMult := mult.Damage
	if damageMult <= 0 {
		damageMult = 1
	}

	maxHealth := int(math.Floor(float64(baseHealth+healthPerLevel*lvl+total.Health) * healthMult))
	if maxHealth < 1 {
		maxHealth = 1
	}
	maxMana := max(0, baseMana+manaPerLevel*lvl+total.Mana)

	f := &Fighter{
		ID:               spec.ID,
		Name:             spec.Name,
		Class:            class.ID,
		Level:            spec.Level,
		Health:           maxHealth,
		MaxHealth:        maxHealth,
		Mana:             maxMana,
		MaxMana:          maxMana,
		Strength:         max(0, baseStrength+strengthPerLevel*lvl+total.Strength),
		Defense:          max(0, baseDefense+defensePerLevel*lvl+total.Defense),
		CritChance:       math.Max(0, math.Min(1, baseCritChance+total.CritChance)),
		CritMultiplier:   baseCritMultiplier,
		ManaRegen:        max(0, baseManaRegen+total.ManaRegen),
		AttackRange:      baseAttackRange,
		MoveSpeed:        baseMoveSpeed,
		DamageMultiplier: damageMult,
		Position:         pos,
		Effects:          status.NewSet(),
	}
	if class.AttackRange > 0 {
		f.AttackRange = class.AttackRange
	}
	if class.MoveSpeed > 0 {
		f.MoveSpeed = class.MoveSpeed
	}
	for _, id := range class.Skills {
		def, ok := skills(id)
		if !ok {
			return nil, fmt.Errorf("class %q: %w: %q", class.ID, ErrUnknownSkill, id)
		}
		f.Skills = append(f.Skills, &SkillSlot{Def: def})
	}
	return f, nil
}
