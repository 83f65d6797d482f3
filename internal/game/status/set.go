package status

import "fmt"

// Effect is one status applied to a fighter.
//
// Magnitude is a flat per-tick amount for damage and heal over time, a flat
// absorb pool for shield, a move delta for haste and slow, and a fraction for
// every other kind (0.25 = 25%).
type Effect struct {
	Kind      Kind
	Duration  int
	Magnitude float64
	Stacks    int
	// MaxStacks caps Stacks on re-application; values below 1 are treated as 1.
	MaxStacks int
}

// Tick is the result of one effect's turn of processing.
type Tick struct {
	Kind Kind
	// Amount is the health delta the effect requests this tick: negative for
	// damage over time, positive for heal over time, zero otherwise.
	Amount    int
	Remaining int
	Expired   bool
}

// Set holds the effects on one fighter in application order.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	effects []*Effect
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

func maxStacks(e Effect) int {
	if e.MaxStacks < 1 {
		return 1
	}
	return e.MaxStacks
}

// Apply adds e to the set, or merges it into the existing effect of the same kind.
// On merge, stacks grow by e.Stacks (at least 1) capped at MaxStacks, duration becomes
// max(existing, new), and magnitude becomes max(existing, new).
//
// Precondition: e.Kind.Valid().
// Postcondition: Returns false and leaves the set unchanged when e.Duration <= 0;
// otherwise Has(e.Kind) is true and Stacks(e.Kind) <= max(1, e.MaxStacks).
func (s *Set) Apply(e Effect) (bool, error) {
	if !e.Kind.Valid() {
		return false, fmt.Errorf("Apply: unknown status kind %q", e.Kind)
	}
	if e.Duration <= 0 {
		return false, nil
	}
	add := e.Stacks
	if add < 1 {
		add = 1
	}

	if existing := s.find(e.Kind); existing != nil {
		if e.MaxStacks > existing.MaxStacks {
			existing.MaxStacks = e.MaxStacks
		}
		limit := maxStacks(*existing)
		existing.Stacks += add
		if existing.Stacks > limit {
			existing.Stacks = limit
		}
		if e.Duration > existing.Duration {
			existing.Duration = e.Duration
		}
		if e.Magnitude > existing.Magnitude {
			existing.Magnitude = e.Magnitude
		}
		return true, nil
	}

	if limit := maxStacks(e); add > limit {
		add = limit
	}
	ne := e
	ne.Stacks = add
	s.effects = append(s.effects, &ne)
	return true, nil
}

// Tick advances every effect by one owner turn, in application order.
// Damage and heal over time report magnitude × stacks as their Amount; every
// effect's duration decrements by exactly 1 and effects reaching 0 are removed.
//
// Postcondition: len(result) equals the number of effects before the call;
// no remaining effect has Duration <= 0.
func (s *Set) Tick() []Tick {
	out := make([]Tick, 0, len(s.effects))
	kept := s.effects[:0]
	for _, e := range s.effects {
		t := Tick{Kind: e.Kind}
		amount := int(e.Magnitude) * e.Stacks
		switch e.Kind.Category() {
		case DamageOverTime:
			t.Amount = -amount
		case HealOverTime:
			t.Amount = amount
		}
		e.Duration--
		t.Remaining = e.Duration
		if e.Duration <= 0 {
			t.Expired = true
		} else {
			kept = append(kept, e)
		}
		out = append(out, t)
	}
	for i := len(kept); i < len(s.effects); i++ {
		s.effects[i] = nil
	}
	s.effects = kept
	return out
}

// Absorb drains incoming damage through an active shield.
//
// Precondition: dmg >= 0.
// Postcondition: remaining + absorbed == dmg; the shield is removed once its pool is empty.
func (s *Set) Absorb(dmg int) (remaining, absorbed int) {
	sh := s.find(Shield)
	if sh == nil || dmg <= 0 {
		return dmg, 0
	}
	pool := int(sh.Magnitude) * sh.Stacks
	absorbed = dmg
	if absorbed > pool {
		absorbed = pool
	}
	pool -= absorbed
	if pool <= 0 {
		s.Remove(Shield)
	} else {
		// collapse the remaining pool into a single stack
		sh.Magnitude = float64(pool)
		sh.Stacks = 1
	}
	return dmg - absorbed, absorbed
}

// Remove deletes the effect of kind k. If none is present, Remove is a no-op.
//
// Postcondition: Has(k) is false.
func (s *Set) Remove(k Kind) {
	for i, e := range s.effects {
		if e.Kind == k {
			copy(s.effects[i:], s.effects[i+1:])
			s.effects[len(s.effects)-1] = nil
			s.effects = s.effects[:len(s.effects)-1]
			return
		}
	}
}

// Clear removes every effect.
func (s *Set) Clear() {
	s.effects = nil
}

// Has reports whether an effect of kind k is active.
func (s *Set) Has(k Kind) bool {
	return s.find(k) != nil
}

// Get returns a copy of the effect of kind k.
func (s *Set) Get(k Kind) (Effect, bool) {
	if e := s.find(k); e != nil {
		return *e, true
	}
	return Effect{}, false
}

// Stacks returns the current stack count for kind k, or 0 if not present.
func (s *Set) Stacks(k Kind) int {
	if e := s.find(k); e != nil {
		return e.Stacks
	}
	return 0
}

// Len returns the number of active effects.
func (s *Set) Len() int {
	return len(s.effects)
}

// All returns copies of the active effects in application order.
func (s *Set) All() []Effect {
	out := make([]Effect, len(s.effects))
	for i, e := range s.effects {
		out[i] = *e
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{effects: make([]*Effect, len(s.effects))}
	for i, e := range s.effects {
		ne := *e
		c.effects[i] = &ne
	}
	return c
}

func (s *Set) find(k Kind) *Effect {
	for _, e := range s.effects {
		if e.Kind == k {
			return e
		}
	}
	return nil
}
