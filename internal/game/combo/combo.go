// Package combo detects declared action sequences in a fighter's recent history
// and holds the resulting bonus until the next damage-dealing action consumes it.
package combo

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// DefaultWindow is the number of recent actions kept for matching.
const DefaultWindow = 5

// Step is one position of a combo sequence.
type Step struct {
	Action combat.ActionKind `yaml:"action"`
	// Skill, when set, must equal the recorded skill id.
	Skill string `yaml:"skill"`
}

// Bonus is the payload a matched combo grants.
type Bonus struct {
	DamageMultiplier  float64 `yaml:"damage_multiplier"`
	BonusDamage       int     `yaml:"bonus_damage"`
	Heal              int     `yaml:"heal"`
	ManaRestore       int     `yaml:"mana_restore"`
	CooldownReduction int     `yaml:"cooldown_reduction"`
}

// Boost returns the part of the bonus applied to the next damage resolution.
func (b Bonus) Boost() combat.Boost {
	return combat.Boost{Multiplier: b.DamageMultiplier, Flat: b.BonusDamage}
}

// Definition is a combo loaded from content. Definitions are matched in declared order.
type Definition struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Sequence []Step `yaml:"sequence"`
	// Class, when set, restricts the combo to fighters of that class.
	Class string `yaml:"class"`
	Bonus Bonus  `yaml:"bonus"`
}

// Validate checks the definition against the window size and the known skills.
//
// Postcondition: Returns nil, or one error describing every violation.
func (d *Definition) Validate(window int, knownSkill func(id string) bool) error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if len(d.Sequence) == 0 || len(d.Sequence) > window {
		errs = append(errs, fmt.Sprintf("sequence length must be 1-%d, got %d", window, len(d.Sequence)))
	}
	for i, s := range d.Sequence {
		if s.Action == combat.ActionUnknown {
			errs = append(errs, fmt.Sprintf("step %d: action must be set", i))
		}
		if s.Skill != "" {
			if s.Action != combat.ActionSkill {
				errs = append(errs, fmt.Sprintf("step %d: skill %q requires action skill", i, s.Skill))
			} else if knownSkill != nil && !knownSkill(s.Skill) {
				errs = append(errs, fmt.Sprintf("step %d: unknown skill %q", i, s.Skill))
			}
		}
	}
	if d.Bonus.DamageMultiplier < 0 {
		errs = append(errs, "bonus.damage_multiplier must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("combo %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Entry is one recorded action.
type Entry struct {
	Kind    combat.ActionKind
	SkillID string
	// Turn is the encounter turn on which the action resolved.
	Turn int
}

// Match returns the first definition, in declared order, whose sequence equals the
// suffix of window of the same length and whose class restriction admits class.
//
// Postcondition: The result depends only on defs, window, and class.
func Match(defs []*Definition, window []Entry, class string) (*Definition, bool) {
	for _, d := range defs {
		if d.Class != "" && d.Class != class {
			continue
		}
		n := len(d.Sequence)
		if n == 0 || n > len(window) {
			continue
		}
		suffix := window[len(window)-n:]
		ok := true
		for i, s := range d.Sequence {
			e := suffix[i]
			if e.Kind != s.Action || (s.Skill != "" && e.SkillID != s.Skill) {
				ok = false
				break
			}
		}
		if ok {
			return d, true
		}
	}
	return nil, false
}
