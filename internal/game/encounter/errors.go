package encounter

import "errors"

var (
	// ErrNotPlayerTurn is returned when a player action arrives outside the player's turn.
	ErrNotPlayerTurn = errors.New("not the player's turn")
	// ErrNotOpponentTurn is returned when the opponent turn is run outside its slot.
	ErrNotOpponentTurn = errors.New("not the opponent's turn")
	// ErrEncounterOver is returned for any action after victory, defeat, or a successful flee.
	ErrEncounterOver = errors.New("encounter is over")
	// ErrUnreachable is returned when a move destination is not reachable this turn.
	ErrUnreachable = errors.New("destination unreachable")
	// ErrUnknownAction is returned for an action kind the player may not submit.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownDifficulty is returned when the difficulty id is not in the rule tables.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrUnknownClass is returned when a fighter class id is not in the rule tables.
	ErrUnknownClass = errors.New("unknown class")
	// ErrUnknownPersonality is returned when a personality id is not in the rule tables.
	ErrUnknownPersonality = errors.New("unknown personality")
	// ErrSessionNotFound is returned by Manager for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
)
