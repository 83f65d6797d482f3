package status

// StrengthMultiplier returns the net strength scale from attack_up and weaken.
// Each stack contributes its magnitude.
//
// Postcondition: Returns >= 0.
func StrengthMultiplier(s *Set) float64 {
	return scale(s, AttackUp, Weaken)
}

// DefenseMultiplier returns the net defense scale from defense_up and vulnerable.
//
// Postcondition: Returns >= 0.
func DefenseMultiplier(s *Set) float64 {
	return scale(s, DefenseUp, Vulnerable)
}

// CritBonus returns the additive critical chance granted by crit_up.
//
// Postcondition: Returns >= 0.
func CritBonus(s *Set) float64 {
	return fraction(s, CritUp)
}

// MissBonus returns the additive miss chance imposed by blind.
//
// Postcondition: 0 <= result <= 1.
func MissBonus(s *Set) float64 {
	b := fraction(s, Blind)
	if b > 1 {
		return 1
	}
	return b
}

// MoveDelta returns the movement budget change from haste and slow.
func MoveDelta(s *Set) int {
	delta := 0
	if e := s.find(Haste); e != nil {
		delta += int(e.Magnitude) * e.Stacks
	}
	if e := s.find(Slow); e != nil {
		delta -= int(e.Magnitude) * e.Stacks
	}
	return delta
}

// IsControlled reports whether any active effect suppresses acting.
func IsControlled(s *Set) bool {
	for _, e := range s.effects {
		if e.Kind.IsControl() {
			return true
		}
	}
	return false
}

func fraction(s *Set, k Kind) float64 {
	if e := s.find(k); e != nil {
		return e.Magnitude * float64(e.Stacks)
	}
	return 0
}

func scale(s *Set, up, down Kind) float64 {
	m := 1 + fraction(s, up) - fraction(s, down)
	if m < 0 {
		return 0
	}
	return m
}
