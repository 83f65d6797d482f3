package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// ScriptCaller evaluates a Lua score hook. *scripting.Manager satisfies it.
type ScriptCaller interface {
	// CallHookWith calls a named Lua function in the given namespace's VM with
	// script dice drawn from roller. Returns (LNil, nil) if the function is not defined.
	CallHookWith(ns, hook string, roller *dice.Roller, args ...lua.LValue) (lua.LValue, error)
}

// Outcome is what the engine's previous action achieved.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeHit
	OutcomeSkillSuccess
	OutcomeDefended
	OutcomeMiss
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeSkillSuccess:
		return "skill_success"
	case OutcomeDefended:
		return "defended"
	case OutcomeMiss:
		return "miss"
	default:
		return "none"
	}
}

// Memory is the outcome of the engine's previous action.
type Memory struct {
	Action  combat.Action
	Outcome Outcome
}

// Candidate is one legal action with its score.
type Candidate struct {
	Action combat.Action
	Score  float64
}

// Decision is the engine's choice for one turn.
type Decision struct {
	Action combat.Action
	Score  float64
	// Mistake is true when the best candidate was deliberately passed over.
	Mistake bool
	// Candidates lists every scored candidate in evaluation order.
	Candidates []Candidate
}

// Engine scores candidate actions for one opponent.
// It is not safe for concurrent use; the caller must serialise access.
type Engine struct {
	personality *Personality
	weights     Weights
	mistake     float64
	src         dice.Source
	roller      *dice.Roller
	logger      *zap.Logger

	scripts   ScriptCaller
	namespace string

	memory Memory
}

// NewEngine builds an Engine for personality p that errs with probability mistake.
//
// Precondition: p, src, and logger must be non-nil; mistake in [0, 1].
// Postcondition: Returns a non-nil Engine using DefaultWeights and no script hook.
func NewEngine(p *Personality, mistake float64, src dice.Source, logger *zap.Logger) *Engine {
	if p == nil {
		panic("ai.NewEngine: personality must not be nil")
	}
	if src == nil {
		panic("ai.NewEngine: source must not be nil")
	}
	if logger == nil {
		panic("ai.NewEngine: logger must not be nil")
	}
	roller, ok := src.(*dice.Roller)
	if !ok {
		roller = dice.NewLoggedRoller(src, logger)
	}
	return &Engine{
		personality: p,
		weights:     DefaultWeights(),
		mistake:     mistake,
		src:         src,
		roller:      roller,
		logger:      logger,
	}
}

// SetWeights replaces the scoring coefficients.
func (e *Engine) SetWeights(w Weights) { e.weights = w }

// SetScripts enables the personality's score hook, evaluated in namespace ns.
// A nil caller disables it.
func (e *Engine) SetScripts(caller ScriptCaller, ns string) {
	e.scripts = caller
	e.namespace = ns
}

// Personality returns the engine's personality.
func (e *Engine) Personality() *Personality { return e.personality }

// Memory returns the outcome of the previous action.
func (e *Engine) Memory() Memory { return e.memory }

// Remember records the outcome of the action just taken.
func (e *Engine) Remember(a combat.Action, o Outcome) {
	e.memory = Memory{Action: a, Outcome: o}
}

// Forget clears the memory.
func (e *Engine) Forget() { e.memory = Memory{} }

// Candidates returns every legal action for s in evaluation order: the basic
// attack when in reach, each usable skill, then defend.
//
// Postcondition: Never contains an unusable skill; always ends with defend.
func Candidates(s Situation) []combat.Action {
	var out []combat.Action
	if s.CanAct && s.InReach() {
		out = append(out, combat.Action{Kind: combat.ActionAttack})
	}
	if s.CanAct {
		for _, def := range s.Usable {
			out = append(out, combat.Action{Kind: combat.ActionSkill, SkillID: def.ID})
		}
	}
	return append(out, combat.Action{Kind: combat.ActionDefend})
}

// Decide scores every legal action for self against opp and picks the highest,
// earliest in evaluation order on ties. With the mistake probability a strictly
// lower-scoring candidate is chosen instead; when every candidate ties, no mistake
// is possible and no roll is drawn.
//
// Precondition: self and opp must be non-nil.
// Postcondition: The action is attack, defend, or a skill that is ready, affordable,
// and in reach.
func (e *Engine) Decide(self, opp *combat.Fighter) Decision {
	s := Observe(self, opp)
	actions := Candidates(s)
	defs := make(map[string]*combat.SkillDef, len(s.Usable))
	for _, d := range s.Usable {
		defs[d.ID] = d
	}

	d := Decision{Candidates: make([]Candidate, 0, len(actions))}
	best := 0
	for i, a := range actions {
		score := e.score(s, a, defs[a.SkillID])
		d.Candidates = append(d.Candidates, Candidate{Action: a, Score: score})
		if score > d.Candidates[best].Score {
			best = i
		}
	}

	var worse []int
	for i, c := range d.Candidates {
		if c.Score < d.Candidates[best].Score {
			worse = append(worse, i)
		}
	}
	pick := best
	if len(worse) > 0 && dice.Chance(e.src, e.mistake) {
		pick = worse[dice.Pick(e.src, len(worse))]
		d.Mistake = true
	}
	d.Action = d.Candidates[pick].Action
	d.Score = d.Candidates[pick].Score

	e.logger.Debug("ai decision",
		zap.String("fighter", self.ID),
		zap.String("personality", e.personality.ID),
		zap.Stringer("action", d.Action),
		zap.Float64("score", d.Score),
		zap.Bool("mistake", d.Mistake),
		zap.Int("candidates", len(actions)),
	)
	return d
}

// urgency is how far below the self-preservation threshold health has fallen, in [0, 1].
func (e *Engine) urgency(s Situation) float64 {
	t := e.personality.SelfPreservation
	if t <= 0 || s.SelfHealth >= t {
		return 0
	}
	return (t - s.SelfHealth) / t
}

func (e *Engine) score(s Situation, a combat.Action, def *combat.SkillDef) float64 {
	w, p := e.weights, e.personality
	finish := w.Finish * (1 - s.OpponentHealth)
	var score float64

	switch a.Kind {
	case combat.ActionAttack:
		score = w.AttackBase + w.Aggression*p.Aggression + finish
	case combat.ActionSkill:
		score = w.SkillBase + w.Affinity*p.SkillAffinity
		if power := damagePower(def); power > 0 {
			score += w.Aggression*p.Aggression + w.Power*power + finish
		}
		if restorative(def) {
			score += w.Preservation * e.urgency(s)
		}
		if s.Mana > 0 {
			score -= w.ManaThrift * float64(def.ManaCost) / float64(s.Mana)
		}
	case combat.ActionDefend:
		score = w.DefendBase + w.Caution*(1-p.Aggression) + w.Preservation*e.urgency(s)
	}

	if last := e.memory; last.Action.Kind == a.Kind && last.Action.SkillID == a.SkillID {
		switch last.Outcome {
		case OutcomeMiss:
			score -= w.MissPenalty
		case OutcomeDefended, OutcomeSkillSuccess:
			score -= w.RepeatPenalty
		}
	}

	return score + w.Script*e.scriptBias(s, a)
}

// scriptBias evaluates the personality's score hook for a; failures contribute 0.
func (e *Engine) scriptBias(s Situation, a combat.Action) float64 {
	hook := e.personality.ScoreHook
	if e.scripts == nil || hook == "" {
		return 0
	}
	ret, err := e.scripts.CallHookWith(e.namespace, hook, e.roller,
		lua.LString(a.Kind.String()),
		lua.LString(a.SkillID),
		lua.LNumber(s.SelfHealth),
		lua.LNumber(s.OpponentHealth),
		lua.LNumber(s.SelfMana),
		lua.LNumber(s.Distance),
		lua.LString(e.memory.Outcome.String()),
	)
	if err != nil {
		e.logger.Warn("ai score hook failed", zap.String("hook", hook), zap.Error(err))
		return 0
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		if ret != nil && ret != lua.LNil {
			e.logger.Warn("ai score hook returned a non-number",
				zap.String("hook", hook),
				zap.Stringer("type", ret.Type()),
			)
		}
		return 0
	}
	return float64(n)
}
