package ruleset

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// SideMultipliers scale one side of an encounter at build time.
type SideMultipliers struct {
	Health float64 `yaml:"health"`
	Damage float64 `yaml:"damage"`
}

// Combat converts m into the fighter builder's multipliers.
func (m SideMultipliers) Combat() combat.Multipliers {
	return combat.Multipliers{Health: m.Health, Damage: m.Damage}
}

// Difficulty is one row of the difficulty table.
//
// Precondition: ID and Name must be non-empty after loading.
type Difficulty struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Player      SideMultipliers `yaml:"player"`
	Opponent    SideMultipliers `yaml:"opponent"`
	// RewardMultiplier scales post-combat rewards; consumed outside the combat core.
	RewardMultiplier float64 `yaml:"reward_multiplier"`
	// MistakeChance is the probability the opponent AI picks a suboptimal action.
	MistakeChance float64 `yaml:"mistake_chance"`
	// Personality is the default AI personality id for generated opponents.
	Personality string `yaml:"personality"`
	// OpponentClasses is the pool a generated opponent's class is drawn from.
	OpponentClasses []string `yaml:"opponent_classes"`
	// LevelOffset is added to the player's level for generated opponents.
	LevelOffset int `yaml:"level_offset"`
}

// validate checks the row's own fields.
func (d *Difficulty) validate() []string {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "difficulty: id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, fmt.Sprintf("difficulty %q: name must not be empty", d.ID))
	}
	if d.Player.Health <= 0 || d.Player.Damage <= 0 {
		errs = append(errs, fmt.Sprintf("difficulty %q: player multipliers must be > 0", d.ID))
	}
	if d.Opponent.Health <= 0 || d.Opponent.Damage <= 0 {
		errs = append(errs, fmt.Sprintf("difficulty %q: opponent multipliers must be > 0", d.ID))
	}
	if d.RewardMultiplier < 0 {
		errs = append(errs, fmt.Sprintf("difficulty %q: reward_multiplier must be >= 0", d.ID))
	}
	if d.MistakeChance < 0 || d.MistakeChance > 1 {
		errs = append(errs, fmt.Sprintf("difficulty %q: mistake_chance must be in [0, 1], got %v", d.ID, d.MistakeChance))
	}
	if len(d.OpponentClasses) == 0 {
		errs = append(errs, fmt.Sprintf("difficulty %q: opponent_classes must not be empty", d.ID))
	}
	return errs
}
