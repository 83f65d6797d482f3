package encounter

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/combo"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// Stats are the counters tracked over one encounter.
type Stats struct {
	DamageDealt int `json:"damage_dealt"`
	DamageTaken int `json:"damage_taken"`
	Rounds      int `json:"rounds"`
	// MaxComboLength is the longest action sequence of any combo the player triggered.
	MaxComboLength  int `json:"max_combo_length"`
	CombosTriggered int `json:"combos_triggered"`
	Criticals       int `json:"criticals"`
	SkillsUsed      int `json:"skills_used"`
}

// Result is what one resolved turn reports to the caller.
type Result struct {
	Log     []string `json:"log"`
	Outcome Outcome  `json:"outcome"`
	Turn    int      `json:"turn"`
	Round   int      `json:"round"`
}

// Session is the live state of one encounter.
// All access goes through Controller, which serialises it on mu.
type Session struct {
	ID         uuid.UUID
	Player     *combat.Fighter
	Opponent   *combat.Fighter
	Grid       *grid.Grid
	Difficulty *ruleset.Difficulty
	// Seed replays the encounter when it was built from a seeded source; 0 otherwise.
	Seed      uint64
	StartedAt time.Time

	mu       sync.Mutex
	machine  *fsm.FSM
	resolver *combat.Resolver
	roller   *dice.Roller
	combos   *combo.Tracker
	ai       *ai.Engine
	turn     int
	round    int
	outcome  Outcome
	stats    Stats
	history  []string
	ended    time.Time
}

// State returns the current turn controller state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// Outcome returns how the encounter stands.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// History returns every log line emitted so far, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// over reports whether the encounter reached a terminal state.
func (s *Session) over() bool {
	return s.outcome != OutcomeOngoing
}

// count adds one action's damage and criticals to the side that dealt them.
func (s *Session) count(byPlayer bool, damage, crits int) {
	if byPlayer {
		s.stats.DamageDealt += damage
		s.stats.Criticals += crits
		return
	}
	s.stats.DamageTaken += damage
}

// Summary is the record of an encounter handed to persistence and reporting.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	PlayerID      string    `json:"player_id"`
	PlayerClass   string    `json:"player_class"`
	OpponentID    string    `json:"opponent_id"`
	OpponentClass string    `json:"opponent_class"`
	Difficulty    string    `json:"difficulty"`
	Outcome       Outcome   `json:"outcome"`
	State         string    `json:"state"`
	Turn          int       `json:"turn"`
	Round         int       `json:"round"`
	Seed          uint64    `json:"seed"`
	Stats         Stats     `json:"stats"`
	StartedAt     time.Time `json:"started_at"`
	// EndedAt is zero while the encounter is ongoing.
	EndedAt time.Time `json:"ended_at"`
}

// Summary returns the tracked counters and identity of the encounter.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() Summary {
	st := s.stats
	st.Rounds = s.round
	return Summary{
		ID:            s.ID,
		PlayerID:      s.Player.ID,
		PlayerClass:   s.Player.Class,
		OpponentID:    s.Opponent.ID,
		OpponentClass: s.Opponent.Class,
		Difficulty:    s.Difficulty.ID,
		Outcome:       s.outcome,
		State:         s.machine.Current(),
		Turn:          s.turn,
		Round:         s.round,
		Seed:          s.Seed,
		Stats:         st,
		StartedAt:     s.StartedAt,
		EndedAt:       s.ended,
	}
}
