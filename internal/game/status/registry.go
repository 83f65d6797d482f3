package status

import "fmt"

// Def is the static definition of a status kind, loaded from content.
type Def struct {
	Kind        Kind   `yaml:"kind"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MaxStacks   int    `yaml:"max_stacks"`
}

// Registry holds all known Defs keyed by kind.
type Registry struct {
	defs map[Kind]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Def)}
}

// Register adds def to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if def.Kind is unknown or already registered.
func (r *Registry) Register(def *Def) error {
	if !def.Kind.Valid() {
		return fmt.Errorf("registering status: unknown kind %q", def.Kind)
	}
	if _, dup := r.defs[def.Kind]; dup {
		return fmt.Errorf("registering status: duplicate kind %q", def.Kind)
	}
	r.defs[def.Kind] = def
	return nil
}

// Get returns the Def for k, or (nil, false) if not found.
func (r *Registry) Get(k Kind) (*Def, bool) {
	d, ok := r.defs[k]
	return d, ok
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Missing returns the known kinds that have no definition, in declaration order.
func (r *Registry) Missing() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if _, ok := r.defs[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// New builds an Effect of kind k using the registered stack cap.
//
// Postcondition: Returns an error iff k has no definition.
func (r *Registry) New(k Kind, duration int, magnitude float64) (Effect, error) {
	d, ok := r.defs[k]
	if !ok {
		return Effect{}, fmt.Errorf("no status definition for kind %q", k)
	}
	return Effect{Kind: k, Duration: duration, Magnitude: magnitude, Stacks: 1, MaxStacks: d.MaxStacks}, nil
}

// Name returns the display name of k, falling back to the kind string.
func (r *Registry) Name(k Kind) string {
	if d, ok := r.defs[k]; ok && d.Name != "" {
		return d.Name
	}
	return string(k)
}
