package combo

import "github.com/cory-johannsen/arena/internal/game/combat"

// Tracker keeps one fighter's rolling action window and the pending bonus.
//
// A matched combo clears the window, so the actions that formed it cannot form
// another match. The pending bonus lives only until the next action: a
// damage-dealing action consumes it, any other action discards it.
// It is not safe for concurrent use; the caller must serialise access.
type Tracker struct {
	defs    []*Definition
	size    int
	window  []Entry
	pending *Definition
}

// NewTracker creates a Tracker over defs with a window of size actions.
//
// Postcondition: size < 1 uses DefaultWindow.
func NewTracker(defs []*Definition, size int) *Tracker {
	if size < 1 {
		size = DefaultWindow
	}
	return &Tracker{defs: defs, size: size}
}

// Window returns a copy of the recorded actions, oldest first.
func (t *Tracker) Window() []Entry {
	out := make([]Entry, len(t.window))
	copy(out, t.window)
	return out
}

// Pending returns the combo whose bonus awaits the next action, or nil.
func (t *Tracker) Pending() *Definition {
	return t.pending
}

// Begin starts a new action. When dealsDamage is true the pending bonus is returned
// as a boost and consumed; otherwise it is discarded.
//
// Postcondition: Pending() == nil.
func (t *Tracker) Begin(dealsDamage bool) combat.Boost {
	p := t.pending
	t.pending = nil
	if p == nil || !dealsDamage {
		return combat.Boost{}
	}
	return p.Bonus.Boost()
}

// Record appends e to the window and tests the definitions against it.
// On a match the window is cleared and the combo becomes pending.
//
// Postcondition: len(Window()) <= size.
func (t *Tracker) Record(e Entry, class string) (*Definition, bool) {
	t.window = append(t.window, e)
	if len(t.window) > t.size {
		t.window = t.window[len(t.window)-t.size:]
	}
	d, ok := Match(t.defs, t.window, class)
	if !ok {
		return nil, false
	}
	t.window = t.window[:0]
	t.pending = d
	return d, true
}

// Reset clears the window and the pending bonus.
func (t *Tracker) Reset() {
	t.window = t.window[:0]
	t.pending = nil
}
