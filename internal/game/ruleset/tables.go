package ruleset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/combo"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/status"
)

// Subdirectories of the content directory, one per table.
const (
	DifficultiesDir  = "difficulties"
	ClassesDir       = "classes"
	SkillsDir        = "skills"
	StatusesDir      = "statuses"
	TerrainDir       = "terrain"
	CombosDir        = "combos"
	PersonalitiesDir = "personalities"
)

// comboFile holds an ordered list of combos. Files are read in name order and
// their lists concatenated, which fixes match precedence.
type comboFile struct {
	Combos []*combo.Definition `yaml:"combos"`
}

// Tables is the complete read-only rule set. Build it with Load, or fill the
// slices directly and call Validate.
type Tables struct {
	Difficulties  []*Difficulty
	Classes       []*combat.ClassDef
	Skills        []*combat.SkillDef
	StatusDefs    []*status.Def
	TerrainDefs   []*grid.TerrainDef
	Combos        []*combo.Definition
	Personalities []*ai.Personality

	statuses      *status.Registry
	terrain       *grid.Rules
	personalities *ai.Registry
	difficulties  map[string]*Difficulty
	classes       map[string]*combat.ClassDef
	skills        map[string]*combat.SkillDef
}

// Load reads every table under dir and validates the result.
//
// Precondition: dir must contain one readable subdirectory per table.
// Postcondition: Returns validated Tables, or a non-nil error naming the first
// unreadable file or every integrity violation.
func Load(dir string, comboWindow int) (*Tables, error) {
	var t Tables
	var err error
	if t.Difficulties, err = loadDir[Difficulty](filepath.Join(dir, DifficultiesDir)); err != nil {
		return nil, err
	}
	if t.Classes, err = loadDir[combat.ClassDef](filepath.Join(dir, ClassesDir)); err != nil {
		return nil, err
	}
	if t.Skills, err = loadDir[combat.SkillDef](filepath.Join(dir, SkillsDir)); err != nil {
		return nil, err
	}
	if t.StatusDefs, err = loadDir[status.Def](filepath.Join(dir, StatusesDir)); err != nil {
		return nil, err
	}
	if t.TerrainDefs, err = loadDir[grid.TerrainDef](filepath.Join(dir, TerrainDir)); err != nil {
		return nil, err
	}
	if t.Personalities, err = loadDir[ai.Personality](filepath.Join(dir, PersonalitiesDir)); err != nil {
		return nil, err
	}
	files, err := loadDir[comboFile](filepath.Join(dir, CombosDir))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		t.Combos = append(t.Combos, f.Combos...)
	}
	if err := t.Validate(comboWindow); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate indexes the tables and checks referential integrity: every status and
// terrain kind is defined exactly once, every skill a class or combo names exists,
// every status a skill applies is defined, and every personality and class a
// difficulty names exists.
//
// Postcondition: Returns nil and leaves the lookups usable, or one error describing
// every violation.
func (t *Tables) Validate(comboWindow int) error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	t.statuses = status.NewRegistry()
	for _, d := range t.StatusDefs {
		add(t.statuses.Register(d))
	}
	if missing := t.statuses.Missing(); len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("statuses without definitions: %v", missing))
	}

	rules, err := grid.NewRules(t.TerrainDefs)
	add(err)
	t.terrain = rules
	if rules != nil {
		for _, k := range grid.AllTerrain() {
			if _, ok := rules.Def(k); !ok {
				errs = append(errs, fmt.Sprintf("terrain %q has no definition", k))
			}
		}
	}

	t.skills = make(map[string]*combat.SkillDef, len(t.Skills))
	for _, s := range t.Skills {
		add(s.Validate(t.statuses))
		if _, dup := t.skills[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate skill %q", s.ID))
		}
		t.skills[s.ID] = s
	}

	t.classes = make(map[string]*combat.ClassDef, len(t.Classes))
	for _, c := range t.Classes {
		if c.ID == "" || c.Name == "" {
			errs = append(errs, fmt.Sprintf("class %q: id and name must not be empty", c.ID))
		}
		if _, dup := t.classes[c.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate class %q", c.ID))
		}
		t.classes[c.ID] = c
		for _, id := range c.Skills {
			if _, ok := t.skills[id]; !ok {
				errs = append(errs, fmt.Sprintf("class %q: unknown skill %q", c.ID, id))
			}
		}
	}
	if len(t.Classes) == 0 {
		errs = append(errs, "at least one class must be defined")
	}

	known := func(id string) bool {
		_, ok := t.skills[id]
		return ok
	}
	seenCombo := make(map[string]bool, len(t.Combos))
	for _, c := range t.Combos {
		add(c.Validate(comboWindow, known))
		if seenCombo[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate combo %q", c.ID))
		}
		seenCombo[c.ID] = true
		if c.Class != "" {
			if _, ok := t.classes[c.Class]; !ok {
				errs = append(errs, fmt.Sprintf("combo %q: unknown class %q", c.ID, c.Class))
			}
		}
	}

	t.personalities = ai.NewRegistry()
	for _, p := range t.Personalities {
		add(t.personalities.Register(p))
	}

	t.difficulties = make(map[string]*Difficulty, len(t.Difficulties))
	for _, d := range t.Difficulties {
		errs = append(errs, d.validate()...)
		if _, dup := t.difficulties[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate difficulty %q", d.ID))
		}
		t.difficulties[d.ID] = d
		if _, ok := t.personalities.Get(d.Personality); !ok {
			errs = append(errs, fmt.Sprintf("difficulty %q: unknown personality %q", d.ID, d.Personality))
		}
		for _, id := range d.OpponentClasses {
			if _, ok := t.classes[id]; !ok {
				errs = append(errs, fmt.Sprintf("difficulty %q: unknown class %q", d.ID, id))
			}
		}
	}
	if len(t.Difficulties) == 0 {
		errs = append(errs, "at least one difficulty must be defined")
	}

	if len(errs) > 0 {
		return fmt.Errorf("ruleset validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Statuses returns the status registry.
//
// Precondition: Validate returned nil.
func (t *Tables) Statuses() *status.Registry { return t.statuses }

// Terrain returns the terrain rules.
//
// Precondition: Validate returned nil.
func (t *Tables) Terrain() *grid.Rules { return t.terrain }

// Difficulty returns the difficulty with id, or (nil, false) if not found.
func (t *Tables) Difficulty(id string) (*Difficulty, bool) {
	d, ok := t.difficulties[id]
	return d, ok
}

// Class returns the class with id, or (nil, false) if not found.
func (t *Tables) Class(id string) (*combat.ClassDef, bool) {
	c, ok := t.classes[id]
	return c, ok
}

// Skill returns the skill with id, or (nil, false) if not found.
// It satisfies combat.SkillLookup.
func (t *Tables) Skill(id string) (*combat.SkillDef, bool) {
	s, ok := t.skills[id]
	return s, ok
}

// Personality returns the personality with id, or (nil, false) if not found.
func (t *Tables) Personality(id string) (*ai.Personality, bool) {
	return t.personalities.Get(id)
}
