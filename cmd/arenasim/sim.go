package main

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/encounter"
)

// autopilot drives the player side with the same engine the opponent uses.
type autopilot struct {
	engine *ai.Engine
}

// choose picks the player's action: close to attack range first, then let the engine decide.
func (p *autopilot) choose(s *encounter.Session) combat.Action {
	self, opp := s.Player, s.Opponent
	if self.Position.Distance(opp.Position) > self.AttackRange {
		if dest, ok := s.Grid.Approach(self.Position, opp.Position, self.EffectiveMoveSpeed()); ok && dest != self.Position {
			return combat.Action{Kind: combat.ActionMove, Destination: dest}
		}
	}
	return p.engine.Decide(self, opp).Action
}

// play alternates turns until the encounter ends or maxTurns turns have resolved.
// Every narrated line is passed to emit.
//
// Postcondition: Returns the number of turns resolved.
func play(c *encounter.Controller, s *encounter.Session, pilot *autopilot, maxTurns int, emit func(string)) (int, error) {
	turns := 0
	for turns < maxTurns && s.Outcome() == encounter.OutcomeOngoing {
		var (
			res encounter.Result
			err error
		)
		switch s.State() {
		case encounter.StatePlayerTurn:
			a := pilot.choose(s)
			res, err = c.SubmitPlayerAction(s, a)
			if err != nil {
				// The engine only proposes legal actions, so fall back to defending.
				res, err = c.SubmitPlayerAction(s, combat.Action{Kind: combat.ActionDefend})
			}
		case encounter.StateOpponentTurn:
			res, err = c.RunOpponentTurn(s)
		default:
			return turns, fmt.Errorf("unexpected state %s", s.State())
		}
		if err != nil {
			return turns, err
		}
		turns++
		for _, line := range res.Log {
			emit(line)
		}
	}
	return turns, nil
}
