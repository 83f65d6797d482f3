package encounter

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Turn controller states.
const (
	StatePlayerTurn   = "player_turn"
	StateResolving    = "resolving"
	StateOpponentTurn = "opponent_turn"
	StateVictory      = "victory"
	StateDefeat       = "defeat"
	StateFled         = "fled"
)

// Turn controller events.
const (
	eventResolve    = "resolve"
	eventToOpponent = "to_opponent"
	eventToPlayer   = "to_player"
	eventWin        = "win"
	eventLose       = "lose"
	eventFlee       = "flee"
)

// newMachine builds the turn state machine, starting on the player's turn.
func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StatePlayerTurn,
		fsm.Events{
			{Name: eventResolve, Src: []string{StatePlayerTurn, StateOpponentTurn}, Dst: StateResolving},
			{Name: eventToOpponent, Src: []string{StateResolving}, Dst: StateOpponentTurn},
			{Name: eventToPlayer, Src: []string{StateResolving}, Dst: StatePlayerTurn},
			{Name: eventWin, Src: []string{StateResolving}, Dst: StateVictory},
			{Name: eventLose, Src: []string{StateResolving}, Dst: StateDefeat},
			{Name: eventFlee, Src: []string{StateResolving}, Dst: StateFled},
		},
		fsm.Callbacks{},
	)
}

// fire applies event to m. A failed transition is a programming error in the controller.
func fire(m *fsm.FSM, event string) {
	if err := m.Event(context.Background(), event); err != nil {
		panic(fmt.Sprintf("encounter: transition %q from %q: %v", event, m.Current(), err))
	}
}

// Outcome is how an encounter stands after a step.
type Outcome int

const (
	// OutcomeOngoing means the encounter continues.
	OutcomeOngoing Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeFled
)

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeFled:
		return "fled"
	default:
		return "unknown"
	}
}

// ParseOutcome returns the Outcome named s.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range []Outcome{OutcomeOngoing, OutcomeVictory, OutcomeDefeat, OutcomeFled} {
		if o.String() == s {
			return o, nil
		}
	}
	return OutcomeOngoing, fmt.Errorf("unknown outcome %q", s)
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// event returns the transition that ends the encounter with o.
func (o Outcome) event() string {
	switch o {
	case OutcomeVictory:
		return eventWin
	case OutcomeDefeat:
		return eventLose
	default:
		return eventFlee
	}
}
