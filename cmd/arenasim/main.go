// Package main runs one encounter to completion with both sides driven by the AI
// and prints the narration and final summary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
)

func main() {
	configPath := flag.String("config", "", "optional configuration file; defaults apply when empty")
	class := flag.String("class", "warrior", "player class id")
	level := flag.Int("level", 1, "player level")
	opponentClass := flag.String("opponent-class", "", "opponent class id; empty picks one from the difficulty")
	difficulty := flag.String("difficulty", "normal", "difficulty id")
	pilotPersonality := flag.String("pilot", "balanced", "personality id driving the player")
	seed := flag.Uint64("seed", 0, "encounter seed; 0 picks one at random")
	maxTurns := flag.Int("max-turns", 200, "stop after this many turns")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "arenasim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	tables, err := ruleset.Load(cfg.Content.Dir, cfg.Combat.ComboWindow)
	if err != nil {
		logger.Fatal("loading rule tables", zap.Error(err))
	}
	controller := encounter.NewController(tables, encounter.OptionsFromConfig(cfg.Combat), logger)

	if *seed == 0 {
		*seed = dice.NewSeed()
	}
	src := dice.NewSeededSource(*seed)

	if cfg.Content.ScriptDir != "" {
		if _, statErr := os.Stat(cfg.Content.ScriptDir); statErr == nil {
			scriptMgr := scripting.NewManager(dice.NewLoggedRoller(src, logger), logger)
			if err := scriptMgr.LoadGlobal(cfg.Content.ScriptDir, cfg.Content.ScriptInstructionLimit); err != nil {
				logger.Fatal("loading ai scripts", zap.Error(err))
			}
			defer scriptMgr.Close()
			controller.SetScripts(scriptMgr)
		}
	}

	pers, ok := tables.Personality(*pilotPersonality)
	if !ok {
		logger.Fatal("unknown pilot personality", zap.String("personality", *pilotPersonality))
	}

	player := combat.BuildSpec{ID: "player", Name: "Champion", Class: *class, Level: *level}
	var opponent combat.BuildSpec
	if *opponentClass != "" {
		opponent = combat.BuildSpec{ID: "opponent", Name: "Rival", Class: *opponentClass, Level: *level}
	}
	s, err := controller.InitializeCombat(player, opponent, *difficulty, encounter.WithSeed(*seed))
	if err != nil {
		logger.Fatal("initializing encounter", zap.Error(err))
	}

	// The pilot draws from its own stream so the encounter's rolls stay replayable.
	pilotSeed := *seed + 1
	if pilotSeed == 0 {
		pilotSeed = 1
	}
	pilot := &autopilot{engine: ai.NewEngine(pers, 0, dice.NewSeededSource(pilotSeed), logger)}
	turns, err := play(controller, s, pilot, *maxTurns, func(line string) { fmt.Println(line) })
	if err != nil {
		logger.Fatal("simulation failed", zap.Int("turns", turns), zap.Error(err))
	}

	out, err := json.MarshalIndent(s.Summary(), "", "  ")
	if err != nil {
		logger.Fatal("encoding summary", zap.Error(err))
	}
	fmt.Println(string(out))
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.NewViper())
	}
	return config.Load(path)
}
