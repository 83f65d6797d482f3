package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/grid"
)

// ActionKind identifies what a fighter intends to do on its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionKind int

const (
	ActionUnknown ActionKind = iota // zero value; intentionally invalid
	ActionAttack
	ActionSkill
	ActionDefend
	ActionMove
	ActionFlee
)

// String returns the content-file name of the ActionKind.
// Postcondition: returns "attack", "skill", "defend", "move", "flee", or "unknown".
func (a ActionKind) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	case ActionDefend:
		return "defend"
	case ActionMove:
		return "move"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// ParseActionKind converts a content-file name into an ActionKind.
//
// Postcondition: Returns an error iff s names no valid kind.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "attack":
		return ActionAttack, nil
	case "skill":
		return ActionSkill, nil
	case "defend":
		return ActionDefend, nil
	case "move":
		return ActionMove, nil
	case "flee":
		return ActionFlee, nil
	default:
		return ActionUnknown, fmt.Errorf("unknown action kind %q", s)
	}
}

// MarshalText encodes the kind by name.
func (a ActionKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a kind name.
func (a *ActionKind) UnmarshalText(b []byte) error {
	k, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*a = k
	return nil
}

// Action is one request submitted for a fighter's turn.
type Action struct {
	Kind ActionKind `json:"kind"`
	// SkillID names the skill for ActionSkill.
	SkillID string `json:"skill_id,omitempty"`
	// Destination is the target cell for ActionMove.
	Destination grid.Pos `json:"destination"`
}

// String returns a short description of the action for logs.
func (a Action) String() string {
	switch a.Kind {
	case ActionSkill:
		return "skill:" + a.SkillID
	case ActionMove:
		return "move:" + a.Destination.String()
	default:
		return a.Kind.String()
	}
}
