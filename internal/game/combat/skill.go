package combat

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/status"
)

// EffectKind identifies what one skill effect does.
type EffectKind string

const (
	EffectDamage EffectKind = "damage"
	EffectHeal   EffectKind = "heal"
	EffectStatus EffectKind = "status"
	EffectStat   EffectKind = "stat"
)

// TargetSelector picks which fighter an effect applies to.
type TargetSelector string

const (
	TargetSelf  TargetSelector = "self"
	TargetEnemy TargetSelector = "enemy"
)

// Stat names accepted by stat effects.
const (
	StatStrength    = "strength"
	StatDefense     = "defense"
	StatCritChance  = "crit_chance"
	StatManaRegen   = "mana_regen"
	StatMoveSpeed   = "move_speed"
	StatAttackRange = "attack_range"
)

var validStats = map[string]bool{
	StatStrength: true, StatDefense: true, StatCritChance: true,
	StatManaRegen: true, StatMoveSpeed: true, StatAttackRange: true,
}

// SkillEffect is one step of a skill.
//
// Magnitude is a strength multiplier for damage, a max-health fraction for heal,
// the status magnitude for status, and the additive amount for stat.
type SkillEffect struct {
	Kind      EffectKind     `yaml:"kind"`
	Target    TargetSelector `yaml:"target"`
	Magnitude float64        `yaml:"magnitude"`
	Status    status.Kind    `yaml:"status"`
	Duration  int            `yaml:"duration"`
	Stat      string         `yaml:"stat"`
}

// SkillDef is the static definition of a skill, loaded from content.
type SkillDef struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	ManaCost    int           `yaml:"mana_cost"`
	Cooldown    int           `yaml:"cooldown"`
	// Range is the Chebyshev reach of the skill; 0 uses the caster's attack range.
	Range   int           `yaml:"range"`
	Effects []SkillEffect `yaml:"effects"`
}

// DealsDamage reports whether any effect of the skill is a damage effect.
func (s *SkillDef) DealsDamage() bool {
	for _, e := range s.Effects {
		if e.Kind == EffectDamage {
			return true
		}
	}
	return false
}

// TargetsEnemy reports whether any effect of the skill selects the enemy.
func (s *SkillDef) TargetsEnemy() bool {
	for _, e := range s.Effects {
		if e.Target == TargetEnemy {
			return true
		}
	}
	return false
}

// Validate checks the skill's fields and that every status it applies is registered.
//
// Precondition: statuses must be non-nil.
// Postcondition: Returns nil, or one error describing every violation.
func (s *SkillDef) Validate(statuses *status.Registry) error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if s.ManaCost < 0 {
		errs = append(errs, fmt.Sprintf("mana_cost must be >= 0, got %d", s.ManaCost))
	}
	if s.Cooldown < 0 {
		errs = append(errs, fmt.Sprintf("cooldown must be >= 0, got %d", s.Cooldown))
	}
	if s.Range < 0 {
		errs = append(errs, fmt.Sprintf("range must be >= 0, got %d", s.Range))
	}
	if len(s.Effects) == 0 {
		errs = append(errs, "must declare at least one effect")
	}
	for i, e := range s.Effects {
		if e.Target != TargetSelf && e.Target != TargetEnemy {
			errs = append(errs, fmt.Sprintf("effect %d: target must be self or enemy, got %q", i, e.Target))
		}
		switch e.Kind {
		case EffectDamage, EffectHeal:
			if e.Magnitude < 0 {
				errs = append(errs, fmt.Sprintf("effect %d: magnitude must be >= 0", i))
			}
		case EffectStatus:
			if !e.Status.Valid() {
				errs = append(errs, fmt.Sprintf("effect %d: unknown status %q", i, e.Status))
			} else if _, ok := statuses.Get(e.Status); !ok {
				errs = append(errs, fmt.Sprintf("effect %d: status %q has no definition", i, e.Status))
			}
			if e.Duration < 1 {
				errs = append(errs, fmt.Sprintf("effect %d: duration must be >= 1", i))
			}
		case EffectStat:
			if !validStats[e.Stat] {
				errs = append(errs, fmt.Sprintf("effect %d: unknown stat %q", i, e.Stat))
			}
		default:
			errs = append(errs, fmt.Sprintf("effect %d: unknown kind %q", i, e.Kind))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// EffectOutcome records what one skill effect did.
type EffectOutcome struct {
	Kind   EffectKind
	Target string
	// Amount is damage dealt, health healed, or stat delta, depending on Kind.
	Amount int
	Damage *DamageResult
}

// SkillResult is the outcome of one skill application.
type SkillResult struct {
	SkillID  string
	Outcomes []EffectOutcome
	Lines    []string
	// DamageDealt sums post-mitigation damage to the enemy.
	DamageDealt int
	Criticals   int
}

// CheckSkill reports whether caster may use skill id on target without changing either.
//
// Postcondition: Returns the slot, or an error wrapping ErrDefeated, ErrIncapacitated,
// ErrUnknownSkill, ErrSkillOnCooldown, ErrInsufficientMana, or ErrOutOfRange.
func CheckSkill(caster, target *Fighter, id string) (*SkillSlot, error) {
	if !caster.IsAlive() || !target.IsAlive() {
		return nil, fmt.Errorf("skill %q: %w", id, ErrDefeated)
	}
	if !caster.CanAct() {
		return nil, fmt.Errorf("skill %q by %s: %w", id, caster.ID, ErrIncapacitated)
	}
	slot := caster.Skill(id)
	if slot == nil {
		return nil, fmt.Errorf("skill %q for %s: %w", id, caster.ID, ErrUnknownSkill)
	}
	if !slot.Ready() {
		return nil, fmt.Errorf("skill %q has %d turns left: %w", id, slot.Cooldown, ErrSkillOnCooldown)
	}
	if slot.Def.ManaCost > caster.Mana {
		return nil, fmt.Errorf("skill %q costs %d, %s has %d: %w", id, slot.Def.ManaCost, caster.ID, caster.Mana, ErrInsufficientMana)
	}
	if slot.Def.TargetsEnemy() {
		reach := slot.Def.Range
		if reach == 0 {
			reach = caster.AttackRange
		}
		if d := caster.Position.Distance(target.Position); d > reach {
			return nil, fmt.Errorf("skill %q at distance %d (range %d): %w", id, d, reach, ErrOutOfRange)
		}
	}
	return slot, nil
}

// ApplySkill spends the skill's mana, starts its cooldown, and applies its effects
// in declared order. Each effect observes the state left by the previous ones; the
// sequence stops as soon as either fighter falls. boost augments the first damage effect.
//
// Precondition: r.Src and r.Statuses must be non-nil.
// Postcondition: On error neither fighter is modified; on success Lines has one entry per
// applied effect.
func (r *Resolver) ApplySkill(caster, target *Fighter, id string, boost Boost) (SkillResult, error) {
	slot, err := CheckSkill(caster, target, id)
	if err != nil {
		return SkillResult{}, err
	}
	def := slot.Def
	caster.SpendMana(def.ManaCost)
	slot.Cooldown = def.Cooldown

	res := SkillResult{SkillID: def.ID}
	boosted := false
	for _, e := range def.Effects {
		if !caster.IsAlive() || !target.IsAlive() {
			break
		}
		tgt := target
		if e.Target == TargetSelf {
			tgt = caster
		}
		out := EffectOutcome{Kind: e.Kind, Target: tgt.ID}
		var line string
		switch e.Kind {
		case EffectDamage:
			b := Boost{}
			if !boosted {
				b, boosted = boost, true
			}
			base := math.Floor(caster.EffectiveStrength() * e.Magnitude)
			pre, crit := r.scale(caster, base, b)
			d := r.land(tgt, pre, crit)
			out.Amount = d.Damage
			out.Damage = &d
			if tgt == target {
				res.DamageDealt += d.Damage
			}
			if crit {
				res.Criticals++
			}
			line = d.Narrate(caster, tgt, "hits")
			line = strings.TrimSuffix(line, ".") + " with " + def.Name + "."
		case EffectHeal:
			amount := int(math.Floor(float64(tgt.MaxHealth) * e.Magnitude))
			out.Amount = tgt.Heal(amount)
			line = fmt.Sprintf("%s restores %d health to %s.", def.Name, out.Amount, tgt.Name)
		case EffectStatus:
			eff, err := r.Statuses.New(e.Status, e.Duration, e.Magnitude)
			if err != nil {
				line = fmt.Sprintf("%s fails to apply %s.", def.Name, e.Status)
				break
			}
			if _, err := tgt.Effects.Apply(eff); err != nil {
				line = fmt.Sprintf("%s fails to apply %s.", def.Name, e.Status)
				break
			}
			line = fmt.Sprintf("%s afflicts %s with %s for %d turns.", def.Name, tgt.Name, r.Statuses.Name(e.Status), e.Duration)
		case EffectStat:
			out.Amount = applyStat(tgt, e.Stat, e.Magnitude)
			line = fmt.Sprintf("%s changes %s's %s by %v.", def.Name, tgt.Name, e.Stat, e.Magnitude)
		}
		res.Outcomes = append(res.Outcomes, out)
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

// applyStat adds magnitude to the named stat for the rest of the encounter.
func applyStat(f *Fighter, stat string, magnitude float64) int {
	delta := int(magnitude)
	switch stat {
	case StatStrength:
		f.Strength = max(0, f.Strength+delta)
	case StatDefense:
		f.Defense = max(0, f.Defense+delta)
	case StatCritChance:
		f.CritChance = math.Max(0, math.Min(1, f.CritChance+magnitude))
		return 0
	case StatManaRegen:
		f.ManaRegen = max(0, f.ManaRegen+delta)
	case StatMoveSpeed:
		f.MoveSpeed = max(0, f.MoveSpeed+delta)
	case StatAttackRange:
		f.AttackRange = max(1, f.AttackRange+delta)
	}
	return delta
}

