package combat

import "errors"

// Errors returned when a request is illegal. Each is returned wrapped with detail
// and the fighters are left unmodified.
var (
	ErrInsufficientMana = errors.New("insufficient mana")
	ErrSkillOnCooldown  = errors.New("skill on cooldown")
	ErrUnknownSkill     = errors.New("unknown skill")
	ErrOutOfRange       = errors.New("target out of range")
	ErrIncapacitated    = errors.New("fighter is incapacitated")
	ErrDefeated         = errors.New("fighter is defeated")
	ErrInvalidSpec      = errors.New("invalid fighter spec")
)
