// Package ai chooses the opponent's action each turn by scoring every legal
// candidate against a personality profile and the tactical situation.
package ai

import (
	"fmt"
	"strings"
)

// Personality is a set of trait weights loaded from content.
//
// Precondition: every trait lies in [0, 1] after loading.
type Personality struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Aggression favours attacks and damaging skills.
	Aggression float64 `yaml:"aggression"`
	// SkillAffinity favours skills over basic attacks.
	SkillAffinity float64 `yaml:"skill_affinity"`
	// SelfPreservation is the health fraction below which defensive actions gain weight.
	SelfPreservation float64 `yaml:"self_preservation"`
	// ScoreHook names an optional Lua function whose numeric result is added to each
	// candidate's score.
	ScoreHook string `yaml:"score_hook"`
}

// Validate checks the trait ranges.
//
// Postcondition: Returns nil, or one error describing every violation.
func (p *Personality) Validate() error {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	traits := []struct {
		name string
		v    float64
	}{
		{"aggression", p.Aggression},
		{"skill_affinity", p.SkillAffinity},
		{"self_preservation", p.SelfPreservation},
	}
	for _, tr := range traits {
		if tr.v < 0 || tr.v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", tr.name, tr.v))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("personality %q: %s", p.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Weights are the tunable coefficients that turn traits and context into scores.
type Weights struct {
	AttackBase float64 `yaml:"attack_base"`
	SkillBase  float64 `yaml:"skill_base"`
	DefendBase float64 `yaml:"defend_base"`
	// Aggression multiplies the personality's aggression on damaging actions.
	Aggression float64 `yaml:"aggression"`
	// Affinity multiplies the personality's skill affinity on every skill.
	Affinity float64 `yaml:"affinity"`
	// Power multiplies the summed damage magnitude of a skill.
	Power float64 `yaml:"power"`
	// Finish multiplies the opponent's missing health fraction on damaging actions.
	Finish float64 `yaml:"finish"`
	// Preservation multiplies the urgency below the self-preservation threshold on
	// defend and restorative skills.
	Preservation float64 `yaml:"preservation"`
	// Caution multiplies (1 - aggression) on defend.
	Caution float64 `yaml:"caution"`
	// ManaThrift multiplies the fraction of current mana a skill would spend; subtracted.
	ManaThrift float64 `yaml:"mana_thrift"`
	// MissPenalty is subtracted from the action whose last use missed.
	MissPenalty float64 `yaml:"miss_penalty"`
	// RepeatPenalty is subtracted from repeating the last defend or successful skill.
	RepeatPenalty float64 `yaml:"repeat_penalty"`
	// Script multiplies the score hook's result.
	Script float64 `yaml:"script"`
}

// DefaultWeights returns the stock scoring coefficients.
func DefaultWeights() Weights {
	return Weights{
		AttackBase:    1.0,
		SkillBase:     0.8,
		DefendBase:    0.2,
		Aggression:    1.0,
		Affinity:      1.5,
		Power:         0.5,
		Finish:        1.0,
		Preservation:  2.5,
		Caution:       0.5,
		ManaThrift:    0.5,
		MissPenalty:   0.75,
		RepeatPenalty: 0.25,
		Script:        1.0,
	}
}
