// Package encounter drives one arena encounter from setup to a terminal outcome:
// it builds the fighters and the grid, alternates player and opponent turns, and
// resolves every action through the combat, combo, grid, and AI packages.
package encounter

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/combo"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// Options holds the tuning the controller applies to every session.
type Options struct {
	Tuning         combat.Tuning
	FleeChance     float64
	ComboWindow    int
	GridWidth      int
	GridHeight     int
	GridComplexity float64
}

// OptionsFromConfig converts the combat configuration section into Options.
func OptionsFromConfig(cfg config.CombatConfig) Options {
	return Options{
		Tuning: combat.Tuning{
			MissChance:       cfg.MissChance,
			NormalMultiplier: cfg.NormalMultiplier,
			RandomMin:        cfg.RandomMin,
			RandomMax:        cfg.RandomMax,
			DefendBonus:      cfg.DefendBonus,
		},
		FleeChance:     cfg.FleeChance,
		ComboWindow:    cfg.ComboWindow,
		GridWidth:      cfg.GridWidth,
		GridHeight:     cfg.GridHeight,
		GridComplexity: cfg.GridComplexity,
	}
}

// DefaultOptions returns Options built from the stock combat configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultCombat())
}

// Controller is the turn controller. It holds only read-only collaborators, so one
// Controller serves any number of sessions; each Session is serialised by its own lock.
type Controller struct {
	tables  *ruleset.Tables
	opts    Options
	scripts ai.ScriptCaller
	logger  *zap.Logger
	now     func() time.Time
}

// NewController creates a Controller over the validated rule tables.
//
// Precondition: tables and logger must be non-nil.
// Postcondition: Returns a non-nil Controller with no AI script hooks.
func NewController(tables *ruleset.Tables, opts Options, logger *zap.Logger) *Controller {
	if tables == nil {
		panic("encounter.NewController: tables must not be nil")
	}
	if logger == nil {
		panic("encounter.NewController: logger must not be nil")
	}
	return &Controller{tables: tables, opts: opts, logger: logger, now: time.Now}
}

// SetScripts enables personality score hooks for sessions created afterwards.
// Each opponent's hook is looked up in the namespace named by its personality id.
func (c *Controller) SetScripts(caller ai.ScriptCaller) {
	c.scripts = caller
}

type sessionSetup struct {
	src         dice.Source
	seed        uint64
	personality string
}

// SessionOption customises InitializeCombat.
type SessionOption func(*sessionSetup)

// WithSeed makes the session's randomness replayable from seed.
func WithSeed(seed uint64) SessionOption {
	return func(s *sessionSetup) { s.seed = seed }
}

// WithSource draws every roll of the session from src. It takes precedence over WithSeed.
func WithSource(src dice.Source) SessionOption {
	return func(s *sessionSetup) { s.src = src }
}

// WithPersonality overrides the difficulty's default opponent personality.
func WithPersonality(id string) SessionOption {
	return func(s *sessionSetup) { s.personality = id }
}

// InitializeCombat starts a new encounter between player and opponent at the given
// difficulty. An opponent with no class is generated from the difficulty's class pool
// at the player's level plus the difficulty's level offset.
//
// Precondition: player names a known class and a level >= 1.
// Postcondition: On success the session is on the player's first turn with both
// fighters at full health on a grid where they can reach each other; on error no
// session exists.
func (c *Controller) InitializeCombat(player, opponent combat.BuildSpec, difficultyID string, opts ...SessionOption) (*Session, error) {
	diff, ok := c.tables.Difficulty(difficultyID)
	if !ok {
		return nil, fmt.Errorf("initialize combat: difficulty %q: %w", difficultyID, ErrUnknownDifficulty)
	}
	setup := sessionSetup{personality: diff.Personality}
	for _, o := range opts {
		o(&setup)
	}
	var seed uint64
	if setup.src == nil {
		seed = setup.seed
		if seed == 0 {
			seed = dice.NewSeed()
		}
		setup.src = dice.NewSeededSource(seed)
	}
	roller := dice.NewLoggedRoller(setup.src, c.logger)

	pers, ok := c.tables.Personality(setup.personality)
	if !ok {
		return nil, fmt.Errorf("initialize combat: personality %q: %w", setup.personality, ErrUnknownPersonality)
	}

	if opponent.Class == "" {
		var err error
		if opponent, err = c.generateOpponent(player, opponent, diff, roller); err != nil {
			return nil, fmt.Errorf("initialize combat: %w", err)
		}
	}
	if player.ID != "" && player.ID == opponent.ID {
		return nil, fmt.Errorf("initialize combat: player and opponent share id %q: %w", player.ID, combat.ErrInvalidSpec)
	}

	pStart := grid.Pos{X: 0, Y: c.opts.GridHeight / 2}
	oStart := grid.Pos{X: c.opts.GridWidth - 1, Y: c.opts.GridHeight / 2}
	pf, err := c.build(player, diff.Player, pStart)
	if err != nil {
		return nil, fmt.Errorf("initialize combat: player: %w", err)
	}
	of, err := c.build(opponent, diff.Opponent, oStart)
	if err != nil {
		return nil, fmt.Errorf("initialize combat: opponent: %w", err)
	}

	g, err := grid.Generate(c.opts.GridWidth, c.opts.GridHeight, c.opts.GridComplexity, c.tables.Terrain(), roller, pStart, oStart)
	if err != nil {
		return nil, fmt.Errorf("initialize combat: %w", err)
	}
	if err := g.Place(pf.ID, pStart); err != nil {
		return nil, fmt.Errorf("initialize combat: %w", err)
	}
	if err := g.Place(of.ID, oStart); err != nil {
		return nil, fmt.Errorf("initialize combat: %w", err)
	}

	engine := ai.NewEngine(pers, diff.MistakeChance, roller, c.logger)
	if c.scripts != nil {
		engine.SetScripts(c.scripts, pers.ID)
	}

	s := &Session{
		ID:         uuid.New(),
		Player:     pf,
		Opponent:   of,
		Grid:       g,
		Difficulty: diff,
		Seed:       seed,
		StartedAt:  c.now(),
		machine:    newMachine(),
		resolver: &combat.Resolver{
			Tuning:   c.opts.Tuning,
			Terrain:  g,
			Statuses: c.tables.Statuses(),
			Src:      roller,
		},
		roller: roller,
		combos: combo.NewTracker(c.tables.Combos, c.opts.ComboWindow),
		ai:     engine,
		turn:   1,
		round:  1,
	}
	s.history = append(s.history, fmt.Sprintf("%s (%s, level %d) faces %s (%s, level %d) on %s.",
		pf.Name, pf.Class, pf.Level, of.Name, of.Class, of.Level, diff.Name))

	c.logger.Info("encounter started",
		zap.String("session", s.ID.String()),
		zap.String("player", pf.ID),
		zap.String("player_class", pf.Class),
		zap.String("opponent", of.ID),
		zap.String("opponent_class", of.Class),
		zap.String("difficulty", diff.ID),
		zap.String("personality", pers.ID),
		zap.Uint64("seed", seed),
	)
	return s, nil
}

// generateOpponent fills in the class, level, and identity of an opponent spec
// that names no class.
func (c *Controller) generateOpponent(player, spec combat.BuildSpec, diff *ruleset.Difficulty, src dice.Source) (combat.BuildSpec, error) {
	pool := diff.OpponentClasses
	if len(pool) == 0 {
		for _, cl := range c.tables.Classes {
			pool = append(pool, cl.ID)
		}
	}
	if len(pool) == 0 {
		return spec, fmt.Errorf("generate opponent: no classes available: %w", ErrUnknownClass)
	}
	spec.Class = pool[dice.Pick(src, len(pool))]
	spec.Level = max(1, player.Level+diff.LevelOffset)
	if spec.ID == "" {
		spec.ID = "opponent"
		for n := 2; spec.ID == player.ID; n++ {
			spec.ID = fmt.Sprintf("opponent_%d", n)
		}
	}
	if spec.Name == "" {
		cl, ok := c.tables.Class(spec.Class)
		if !ok {
			return spec, fmt.Errorf("generate opponent: class %q: %w", spec.Class, ErrUnknownClass)
		}
		spec.Name = "Rival " + cl.Name
	}
	return spec, nil
}

func (c *Controller) build(spec combat.BuildSpec, mult ruleset.SideMultipliers, pos grid.Pos) (*combat.Fighter, error) {
	class, ok := c.tables.Class(spec.Class)
	if !ok {
		return nil, fmt.Errorf("class %q: %w", spec.Class, ErrUnknownClass)
	}
	return combat.Build(spec, class, c.tables.Skill, mult.Combat(), pos)
}

// SubmitPlayerAction resolves the player's turn with a: effects tick, the action
// resolves unless a control effect prevents it, mana regenerates, and stationary
// terrain applies. The outcome is checked after every health-affecting step.
//
// Precondition: s was created by this Controller.
// Postcondition: An illegal action returns an error wrapping ErrNotPlayerTurn,
// ErrEncounterOver, ErrUnreachable, ErrUnknownAction, or a combat sentinel, and
// leaves the session untouched with no roll drawn. Otherwise Result carries the
// log lines and counters of the resolved turn.
func (c *Controller) SubmitPlayerAction(s *Session, a combat.Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over() {
		return Result{}, fmt.Errorf("submit %s: %w", a, ErrEncounterOver)
	}
	if !s.machine.Is(StatePlayerTurn) {
		return Result{}, fmt.Errorf("submit %s in state %s: %w", a, s.machine.Current(), ErrNotPlayerTurn)
	}
	if err := c.check(s, a); err != nil {
		return Result{}, fmt.Errorf("submit %s: %w", a, err)
	}
	fire(s.machine, eventResolve)
	lines := c.resolve(s, s.Player, s.Opponent, &a)
	return c.advance(s, s.Player, lines), nil
}

// RunOpponentTurn resolves the opponent's turn: effects tick, then an opponent out
// of attack range closes along a shortest path before the AI picks its action.
//
// Precondition: s was created by this Controller.
// Postcondition: Returns an error wrapping ErrNotOpponentTurn or ErrEncounterOver
// without touching the session, or the Result of the resolved turn.
func (c *Controller) RunOpponentTurn(s *Session) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over() {
		return Result{}, fmt.Errorf("opponent turn: %w", ErrEncounterOver)
	}
	if !s.machine.Is(StateOpponentTurn) {
		return Result{}, fmt.Errorf("opponent turn in state %s: %w", s.machine.Current(), ErrNotOpponentTurn)
	}
	fire(s.machine, eventResolve)
	lines := c.resolve(s, s.Opponent, s.Player, nil)
	return c.advance(s, s.Opponent, lines), nil
}

// QueryReachableCells returns the cells the player could move to this turn.
func (c *Controller) QueryReachableCells(s *Session) []grid.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Grid.Reachable(s.Player.Position, s.Player.EffectiveMoveSpeed())
}

// QueryAttackableCells returns the cells within the player's basic attack range.
func (c *Controller) QueryAttackableCells(s *Session) []grid.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Grid.Attackable(s.Player.Position, s.Player.AttackRange)
}

// check validates the player's action without mutating anything. Control effects
// are ignored here: they are evaluated after this turn's tick, which may lift them.
func (c *Controller) check(s *Session, a combat.Action) error {
	switch a.Kind {
	case combat.ActionAttack, combat.ActionSkill:
		ready := s.Player.Clone()
		ready.Effects.Clear()
		return c.legal(s, ready, s.Opponent, a)
	case combat.ActionMove:
		return c.legal(s, s.Player, s.Opponent, a)
	case combat.ActionDefend, combat.ActionFlee:
		return nil
	default:
		return ErrUnknownAction
	}
}

// legal reports whether actor can carry out a against the current state.
func (c *Controller) legal(s *Session, actor, target *combat.Fighter, a combat.Action) error {
	switch a.Kind {
	case combat.ActionAttack:
		return combat.CheckAttack(actor, target)
	case combat.ActionSkill:
		_, err := combat.CheckSkill(actor, target, a.SkillID)
		return err
	case combat.ActionMove:
		reach := s.Grid.Reachable(actor.Position, actor.EffectiveMoveSpeed())
		if !slices.Contains(reach, a.Destination) {
			return fmt.Errorf("move to %s: %w", a.Destination, ErrUnreachable)
		}
	}
	return nil
}

// resolve runs the resolving sequence for actor. A nil submitted action lets the AI choose.
func (c *Controller) resolve(s *Session, actor, target *combat.Fighter, submitted *combat.Action) []string {
	actor.Defending = false
	lines := actor.TickEffects()
	if c.settle(s) {
		return lines
	}

	if actor.CanAct() {
		lines = append(lines, c.act(s, actor, target, submitted)...)
	} else {
		lines = append(lines, fmt.Sprintf("%s is unable to act.", actor.Name))
		if actor == s.Player {
			s.combos.Begin(false)
		}
	}
	if c.settle(s) {
		return lines
	}

	if n := actor.RegenerateMana(); n > 0 {
		lines = append(lines, fmt.Sprintf("%s regenerates %d mana.", actor.Name, n))
	}
	lines = append(lines, c.terrainEffect(s, actor, grid.OnStay)...)
	c.settle(s)
	return lines
}

// act resolves one action for actor against target.
func (c *Controller) act(s *Session, actor, target *combat.Fighter, submitted *combat.Action) []string {
	var lines []string
	isPlayer := actor == s.Player
	var a combat.Action
	if submitted != nil {
		a = *submitted
	} else {
		if actor.Position.Distance(target.Position) > actor.AttackRange {
			if dest, ok := s.Grid.Approach(actor.Position, target.Position, actor.EffectiveMoveSpeed()); ok {
				lines = append(lines, c.moveTo(s, actor, dest)...)
				if c.settle(s) {
					return lines
				}
			}
		}
		a = s.ai.Decide(actor, target).Action
	}

	// The tick may have changed what is legal; a fumble leaves any pending combo bonus in place.
	if err := c.legal(s, actor, target, a); err != nil {
		return append(lines, c.fumble(s, actor, a, err))
	}
	var boost combat.Boost
	if isPlayer {
		boost = s.combos.Begin(dealsDamage(actor, a))
	}

	memo := ai.OutcomeNone
	switch a.Kind {
	case combat.ActionAttack:
		res, err := s.resolver.BasicAttack(actor, target, boost)
		if err != nil {
			return append(lines, c.fumble(s, actor, a, err))
		}
		lines = append(lines, res.Narrate(actor, target, "attacks"))
		memo = ai.OutcomeHit
		if res.Missed {
			memo = ai.OutcomeMiss
		}
		crits := 0
		if res.IsCritical {
			crits = 1
		}
		s.count(isPlayer, res.Damage, crits)
	case combat.ActionSkill:
		res, err := s.resolver.ApplySkill(actor, target, a.SkillID, boost)
		if err != nil {
			return append(lines, c.fumble(s, actor, a, err))
		}
		lines = append(lines, res.Lines...)
		memo = ai.OutcomeSkillSuccess
		s.count(isPlayer, res.DamageDealt, res.Criticals)
		if isPlayer {
			s.stats.SkillsUsed++
		}
	case combat.ActionDefend:
		actor.Defending = true
		lines = append(lines, fmt.Sprintf("%s takes a defensive stance.", actor.Name))
		memo = ai.OutcomeDefended
	case combat.ActionMove:
		lines = append(lines, c.moveTo(s, actor, a.Destination)...)
	case combat.ActionFlee:
		if s.roller.Chance("flee", c.opts.FleeChance) {
			s.outcome = OutcomeFled
			lines = append(lines, fmt.Sprintf("%s flees the arena.", actor.Name))
		} else {
			lines = append(lines, fmt.Sprintf("%s tries to flee but is cut off.", actor.Name))
		}
	}

	if isPlayer {
		entry := combo.Entry{Kind: a.Kind, SkillID: a.SkillID, Turn: s.turn}
		if d, ok := s.combos.Record(entry, actor.Class); ok {
			lines = append(lines, c.activate(s, actor, d)...)
		}
	} else {
		s.ai.Remember(a, memo)
	}
	return lines
}

// moveTo walks actor to dest and fires the destination's entry effect.
func (c *Controller) moveTo(s *Session, actor *combat.Fighter, dest grid.Pos) []string {
	if err := s.Grid.Move(actor.ID, actor.Position, dest); err != nil {
		return []string{c.fumble(s, actor, combat.Action{Kind: combat.ActionMove, Destination: dest}, err)}
	}
	actor.Position = dest
	lines := []string{fmt.Sprintf("%s moves to %s.", actor.Name, dest)}
	return append(lines, c.terrainEffect(s, actor, grid.OnEnter)...)
}

// terrainEffect applies the periodic effect of the actor's cell for trigger.
func (c *Controller) terrainEffect(s *Session, actor *combat.Fighter, trigger grid.Trigger) []string {
	applied, fired := s.Grid.ApplyTerrainEffect(actor, actor.Position, trigger, s.turn)
	if !fired {
		return nil
	}
	name := "the terrain"
	if cell, ok := s.Grid.Cell(actor.Position); ok {
		if def, ok := s.Grid.Rules().Def(cell.Terrain); ok && def.Name != "" {
			name = def.Name
		}
	}
	return []string{fmt.Sprintf("%s is affected by %s (%+d health, %+d mana).", actor.Name, name, applied.Health, applied.Mana)}
}

// activate grants the immediate part of a combo bonus; the damage part waits in the tracker.
func (c *Controller) activate(s *Session, actor *combat.Fighter, d *combo.Definition) []string {
	name := d.Name
	if name == "" {
		name = d.ID
	}
	lines := []string{fmt.Sprintf("%s performs the %s combo!", actor.Name, name)}
	if d.Bonus.Heal > 0 {
		if n := actor.Heal(d.Bonus.Heal); n > 0 {
			lines = append(lines, fmt.Sprintf("%s recovers %d health.", actor.Name, n))
		}
	}
	if d.Bonus.ManaRestore > 0 {
		if n := actor.RestoreMana(d.Bonus.ManaRestore); n > 0 {
			lines = append(lines, fmt.Sprintf("%s recovers %d mana.", actor.Name, n))
		}
	}
	if d.Bonus.CooldownReduction > 0 {
		actor.ReduceCooldowns(d.Bonus.CooldownReduction)
		lines = append(lines, fmt.Sprintf("%s's cooldowns drop by %d.", actor.Name, d.Bonus.CooldownReduction))
	}
	s.stats.CombosTriggered++
	s.stats.MaxComboLength = max(s.stats.MaxComboLength, len(d.Sequence))
	c.logger.Debug("combo triggered",
		zap.String("session", s.ID.String()),
		zap.String("combo", d.ID),
		zap.Int("turn", s.turn),
	)
	return lines
}

// fumble reports an action that became illegal after this turn's tick.
func (c *Controller) fumble(s *Session, actor *combat.Fighter, a combat.Action, err error) string {
	c.logger.Debug("action fumbled",
		zap.String("session", s.ID.String()),
		zap.String("fighter", actor.ID),
		zap.Stringer("action", a),
		zap.Error(err),
	)
	return fmt.Sprintf("%s fails to %s: %v.", actor.Name, a.Kind, err)
}

// settle records a terminal outcome once a fighter falls. A fallen player is a
// defeat even when the opponent falls on the same step.
func (c *Controller) settle(s *Session) bool {
	switch {
	case s.over():
	case !s.Player.IsAlive():
		s.outcome = OutcomeDefeat
	case !s.Opponent.IsAlive():
		s.outcome = OutcomeVictory
	}
	return s.over()
}

// advance closes the resolving state: it records the log, ends the encounter or
// ticks the other side's cooldowns, steps the counters, and hands the turn over.
func (c *Controller) advance(s *Session, actor *combat.Fighter, lines []string) Result {
	s.history = append(s.history, lines...)
	res := Result{Log: lines, Turn: s.turn, Round: s.round}
	if s.over() {
		fire(s.machine, s.outcome.event())
		s.ended = c.now()
		res.Outcome = s.outcome
		sum := s.summary()
		c.logger.Info("encounter ended",
			zap.String("session", s.ID.String()),
			zap.Stringer("outcome", s.outcome),
			zap.Int("turn", sum.Turn),
			zap.Int("rounds", sum.Stats.Rounds),
			zap.Int("damage_dealt", sum.Stats.DamageDealt),
			zap.Int("damage_taken", sum.Stats.DamageTaken),
		)
		return res
	}

	s.turn++
	if actor == s.Player {
		s.Opponent.TickCooldowns()
		fire(s.machine, eventToOpponent)
	} else {
		s.Player.TickCooldowns()
		s.round++
		fire(s.machine, eventToPlayer)
	}
	return res
}

// dealsDamage reports whether a would consume a pending combo boost.
func dealsDamage(actor *combat.Fighter, a combat.Action) bool {
	switch a.Kind {
	case combat.ActionAttack:
		return true
	case combat.ActionSkill:
		slot := actor.Skill(a.SkillID)
		return slot != nil && slot.Def.DealsDamage()
	default:
		return false
	}
}
