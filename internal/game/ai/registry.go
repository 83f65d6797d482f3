package ai

import "fmt"

// Registry indexes personalities by ID.
//
// Invariant: each personality ID is registered at most once.
type Registry struct {
	personalities map[string]*Personality
	order         []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{personalities: make(map[string]*Personality)}
}

// Register validates p and stores it.
//
// Precondition: p must not be nil.
// Postcondition: returns error on an invalid personality or an ID collision.
func (r *Registry) Register(p *Personality) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.personalities[p.ID]; exists {
		return fmt.Errorf("ai.Registry: personality %q already registered", p.ID)
	}
	r.personalities[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Get returns the personality for id, or false if not registered.
func (r *Registry) Get(id string) (*Personality, bool) {
	p, ok := r.personalities[id]
	return p, ok
}

// IDs returns the registered IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
