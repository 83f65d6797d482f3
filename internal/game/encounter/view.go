package encounter

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/grid"
)

// EffectView is the rendered form of one active status effect.
type EffectView struct {
	Kind      string  `json:"kind"`
	Duration  int     `json:"duration"`
	Magnitude float64 `json:"magnitude"`
	Stacks    int     `json:"stacks"`
}

// SkillView is the rendered form of one known skill.
type SkillView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ManaCost int    `json:"mana_cost"`
	Cooldown int    `json:"cooldown"`
	Range    int    `json:"range"`
}

// FighterView is the rendered form of a fighter.
type FighterView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Class       string       `json:"class"`
	Level       int          `json:"level"`
	Health      int          `json:"health"`
	MaxHealth   int          `json:"max_health"`
	Mana        int          `json:"mana"`
	MaxMana     int          `json:"max_mana"`
	AttackRange int          `json:"attack_range"`
	MoveSpeed   int          `json:"move_speed"`
	Position    grid.Pos     `json:"position"`
	Defending   bool         `json:"defending"`
	Effects     []EffectView `json:"effects"`
	Skills      []SkillView  `json:"skills"`
}

// View is a point-in-time copy of a session for transports to render.
type View struct {
	ID         string        `json:"id"`
	State      string        `json:"state"`
	Outcome    Outcome       `json:"outcome"`
	Difficulty string        `json:"difficulty"`
	Turn       int           `json:"turn"`
	Round      int           `json:"round"`
	Player     FighterView   `json:"player"`
	Opponent   FighterView   `json:"opponent"`
	Grid       [][]grid.Cell `json:"grid"`
	Stats      Stats         `json:"stats"`
}

// Snapshot copies the session's state. The result shares nothing with the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Rounds = s.round
	return View{
		ID:         s.ID.String(),
		State:      s.machine.Current(),
		Outcome:    s.outcome,
		Difficulty: s.Difficulty.ID,
		Turn:       s.turn,
		Round:      s.round,
		Player:     fighterView(s.Player),
		Opponent:   fighterView(s.Opponent),
		Grid:       s.Grid.Rows(),
		Stats:      st,
	}
}

func fighterView(f *combat.Fighter) FighterView {
	v := FighterView{
		ID:          f.ID,
		Name:        f.Name,
		Class:       f.Class,
		Level:       f.Level,
		Health:      f.Health,
		MaxHealth:   f.MaxHealth,
		Mana:        f.Mana,
		MaxMana:     f.MaxMana,
		AttackRange: f.AttackRange,
		MoveSpeed:   f.EffectiveMoveSpeed(),
		Position:    f.Position,
		Defending:   f.Defending,
		Effects:     []EffectView{},
		Skills:      make([]SkillView, 0, len(f.Skills)),
	}
	for _, e := range f.Effects.All() {
		v.Effects = append(v.Effects, EffectView{
			Kind:      string(e.Kind),
			Duration:  e.Duration,
			Magnitude: e.Magnitude,
			Stacks:    e.Stacks,
		})
	}
	for _, sl := range f.Skills {
		v.Skills = append(v.Skills, SkillView{
			ID:       sl.Def.ID,
			Name:     sl.Def.Name,
			ManaCost: sl.Def.ManaCost,
			Cooldown: sl.Cooldown,
			Range:    sl.Def.Range,
		})
	}
	return v
}
