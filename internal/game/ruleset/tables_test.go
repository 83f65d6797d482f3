package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/combo"
	"github.com/cory-johannsen/arena/internal/game/grid"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/game/status"
)

const contentDir = "../../../content"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// minimalTables returns a valid rule set with one of everything.
func minimalTables() *ruleset.Tables {
	t := &ruleset.Tables{
		Difficulties: []*ruleset.Difficulty{{
			ID: "normal", Name: "Normal",
			Player:          ruleset.SideMultipliers{Health: 1, Damage: 1},
			Opponent:        ruleset.SideMultipliers{Health: 1, Damage: 1},
			Personality:     "balanced",
			OpponentClasses: []string{"warrior"},
		}},
		Classes: []*combat.ClassDef{{ID: "warrior", Name: "Warrior", Skills: []string{"strike"}}},
		Skills: []*combat.SkillDef{{
			ID: "strike", Name: "Strike",
			Effects: []combat.SkillEffect{{Kind: combat.EffectDamage, Target: combat.TargetEnemy, Magnitude: 1}},
		}},
		Combos:        []*combo.Definition{{ID: "double", Sequence: []combo.Step{{Action: combat.ActionAttack}, {Action: combat.ActionAttack}}}},
		Personalities: []*ai.Personality{{ID: "balanced", Aggression: 0.5}},
	}
	for _, k := range status.AllKinds() {
		t.StatusDefs = append(t.StatusDefs, &status.Def{Kind: k, Name: string(k), MaxStacks: 1})
	}
	for _, k := range grid.AllTerrain() {
		t.TerrainDefs = append(t.TerrainDefs, &grid.TerrainDef{Kind: k, Walkable: k != grid.Wall, MoveCost: 1})
	}
	return t
}

func TestValidate_Minimal(t *testing.T) {
	tables := minimalTables()
	require.NoError(t, tables.Validate(combo.DefaultWindow))
	_, ok := tables.Skill("strike")
	assert.True(t, ok)
	_, ok = tables.Class("warrior")
	assert.True(t, ok)
	d, ok := tables.Difficulty("normal")
	require.True(t, ok)
	assert.Equal(t, combat.Multipliers{Health: 1, Damage: 1}, d.Player.Combat())
	_, ok = tables.Personality("balanced")
	assert.True(t, ok)
	assert.Equal(t, 17, tables.Statuses().Len())
	assert.NotNil(t, tables.Terrain())
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	tables := minimalTables()
	tables.Classes[0].Skills = append(tables.Classes[0].Skills, "meteor")
	tables.StatusDefs = tables.StatusDefs[1:]
	tables.TerrainDefs = tables.TerrainDefs[:len(tables.TerrainDefs)-1]
	tables.Skills = append(tables.Skills, &combat.SkillDef{
		ID: "venom", Name: "Venom",
		Effects: []combat.SkillEffect{{Kind: combat.EffectStatus, Target: combat.TargetEnemy, Status: status.Poison, Duration: 2}},
	})
	tables.Combos = append(tables.Combos, &combo.Definition{
		ID: "chain", Class: "bard",
		Sequence: []combo.Step{{Action: combat.ActionSkill, Skill: "lute"}},
	})
	tables.Difficulties[0].Personality = "ghost"
	tables.Difficulties[0].OpponentClasses = []string{"lich"}
	tables.Difficulties[0].MistakeChance = 2

	err := tables.Validate(combo.DefaultWindow)
	require.Error(t, err)
	for _, want := range []string{
		`unknown skill "meteor"`,
		"statuses without definitions: [poison]",
		`status "poison" has no definition`,
		`terrain "mana_well" has no definition`,
		`unknown skill "lute"`,
		`unknown class "bard"`,
		`unknown personality "ghost"`,
		`unknown class "lich"`,
		"mistake_chance",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_Duplicates(t *testing.T) {
	tables := minimalTables()
	tables.Skills = append(tables.Skills, tables.Skills[0])
	tables.Classes = append(tables.Classes, tables.Classes[0])
	tables.Combos = append(tables.Combos, tables.Combos[0])
	tables.Difficulties = append(tables.Difficulties, tables.Difficulties[0])
	tables.Personalities = append(tables.Personalities, tables.Personalities[0])
	err := tables.Validate(combo.DefaultWindow)
	require.Error(t, err)
	for _, want := range []string{"duplicate skill", "duplicate class", "duplicate combo", "duplicate difficulty", "already registered"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_EmptyTables(t *testing.T) {
	err := (&ruleset.Tables{}).Validate(combo.DefaultWindow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one class")
	assert.Contains(t, err.Error(), "at least one difficulty")
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"difficulties", "classes", "skills", "statuses", "terrain", "combos", "personalities"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}
	writeFile(t, filepath.Join(dir, "classes", "warrior.yaml"), "id: warrior\nname: Warrior\nhit_points: 10\n")
	_, err := ruleset.Load(dir, combo.DefaultWindow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hit_points")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := ruleset.Load(t.TempDir(), combo.DefaultWindow)
	assert.Error(t, err)
}

// writeMinimalContent lays out a valid content directory without combos.
func writeMinimalContent(t *testing.T, dir string) {
	t.Helper()
	for _, k := range status.AllKinds() {
		writeFile(t, filepath.Join(dir, "statuses", string(k)+".yaml"), "kind: "+string(k)+"\nname: "+string(k)+"\n")
	}
	for _, k := range grid.AllTerrain() {
		walkable := "true"
		if k == grid.Wall {
			walkable = "false"
		}
		writeFile(t, filepath.Join(dir, "terrain", string(k)+".yaml"), "kind: "+string(k)+"\nwalkable: "+walkable+"\nmove_cost: 1\n")
	}
	writeFile(t, filepath.Join(dir, "skills", "strike.yaml"), `
id: strike
name: Strike
effects:
  - kind: damage
    target: enemy
    magnitude: 1
`)
	writeFile(t, filepath.Join(dir, "classes", "warrior.yaml"), "id: warrior\nname: Warrior\nskills: [strike]\n")
	writeFile(t, filepath.Join(dir, "personalities", "balanced.yaml"), "id: balanced\naggression: 0.5\n")
	writeFile(t, filepath.Join(dir, "difficulties", "normal.yaml"), `
id: normal
name: Normal
player: {health: 1, damage: 1}
opponent: {health: 1, damage: 1}
personality: balanced
opponent_classes: [warrior]
`)
}

func TestLoad_CombosKeepFileAndListOrder(t *testing.T) {
	dir := t.TempDir()
	writeMinimalContent(t, dir)
	writeFile(t, filepath.Join(dir, "combos", "10_late.yaml"), `
combos:
  - id: late
    sequence: [{action: defend}]
`)
	writeFile(t, filepath.Join(dir, "combos", "00_early.yaml"), `
combos:
  - id: first
    sequence: [{action: attack}]
  - id: second
    sequence: [{action: move}]
`)
	tables, err := ruleset.Load(dir, combo.DefaultWindow)
	require.NoError(t, err)
	var ids []string
	for _, c := range tables.Combos {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"first", "second", "late"}, ids)
}

func TestLoad_RepositoryContent(t *testing.T) {
	tables, err := ruleset.Load(contentDir, combo.DefaultWindow)
	require.NoError(t, err)

	assert.Equal(t, 17, tables.Statuses().Len())
	assert.Empty(t, tables.Statuses().Missing())
	for _, k := range grid.AllTerrain() {
		_, ok := tables.Terrain().Def(k)
		assert.True(t, ok, "terrain %s", k)
	}
	for _, id := range []string{"warrior", "mage", "rogue", "cleric", "ranger"} {
		c, ok := tables.Class(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, c.Skills)
	}
	for _, id := range []string{"easy", "normal", "hard", "nightmare"} {
		_, ok := tables.Difficulty(id)
		assert.True(t, ok, id)
	}
	p, ok := tables.Personality("tactician")
	require.True(t, ok)
	assert.Equal(t, "tactician_score", p.ScoreHook)

	require.NotEmpty(t, tables.Combos)
	assert.Equal(t, "double_attack", tables.Combos[len(tables.Combos)-1].ID)

	fb, ok := tables.Skill("fireball")
	require.True(t, ok)
	assert.Equal(t, 4, fb.Range)
	require.Len(t, fb.Effects, 2)
	assert.Equal(t, status.Burn, fb.Effects[1].Status)
}
