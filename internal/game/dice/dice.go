// Package dice provides the randomness abstraction used by the arena combat core.
//
// Every roll in an encounter flows through a Source so that tests can inject
// fixed sequences and simulations can replay an encounter from its seed.
package dice

// Source is the randomness provider for combat rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// chanceScale is the resolution of probability rolls: p is compared in units of 1/10000.
const chanceScale = 10000

// Chance reports whether an event with probability p occurs.
//
// Precondition: src must be non-nil.
// Postcondition: p <= 0 returns false and p >= 1 returns true without consuming a roll;
// otherwise exactly one Intn(10000) call is made and the result is < p*10000.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Intn(chanceScale) < int(p*chanceScale)
}

// Range returns a uniform int in the inclusive interval [lo, hi].
//
// Precondition: src must be non-nil.
// Postcondition: hi <= lo returns lo without consuming a roll; otherwise
// lo <= result <= hi.
func Range(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Pick returns a uniform index in [0, n).
//
// Precondition: src must be non-nil.
// Postcondition: n <= 1 returns 0 without consuming a roll.
func Pick(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	return src.Intn(n)
}
