// Package main provides the arena daemon serving encounters over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/api"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
	"github.com/cory-johannsen/arena/internal/server"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

const healthInterval = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "arenad")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting arena server", zap.String("http_addr", cfg.Server.Addr()))

	tablesStart := time.Now()
	tables, err := ruleset.Load(cfg.Content.Dir, cfg.Combat.ComboWindow)
	if err != nil {
		logger.Fatal("loading rule tables", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}
	logger.Info("rule tables loaded",
		zap.Int("classes", len(tables.Classes)),
		zap.Int("skills", len(tables.Skills)),
		zap.Int("combos", len(tables.Combos)),
		zap.Int("difficulties", len(tables.Difficulties)),
		zap.Duration("elapsed", time.Since(tablesStart)),
	)

	controller := encounter.NewController(tables, encounter.OptionsFromConfig(cfg.Combat), logger)

	lifecycle := server.NewLifecycle(logger)

	if cfg.Content.ScriptDir != "" {
		if _, statErr := os.Stat(cfg.Content.ScriptDir); statErr == nil {
			scriptMgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewCryptoSource(), logger), logger)
			if err := scriptMgr.LoadGlobal(cfg.Content.ScriptDir, cfg.Content.ScriptInstructionLimit); err != nil {
				logger.Fatal("loading ai scripts", zap.String("dir", cfg.Content.ScriptDir), zap.Error(err))
			}
			controller.SetScripts(scriptMgr)
			lifecycle.OnShutdown("scripting", scriptMgr.Close)
			logger.Info("ai scripts loaded", zap.String("dir", cfg.Content.ScriptDir))
		} else {
			logger.Warn("ai script directory missing; scripting disabled", zap.String("dir", cfg.Content.ScriptDir))
		}
	}

	var (
		recorder encounter.Recorder
		records  api.RecordStore
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		repo := postgres.NewEncounterRepository(pool.DB())
		recorder, records = repo, repo

		done := make(chan struct{})
		lifecycle.Add("postgres-health", &server.FuncService{
			StartFn: func() error {
				t := time.NewTicker(healthInterval)
				defer t.Stop()
				for {
					select {
					case <-done:
						return nil
					case <-t.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() { close(done) },
		})
		lifecycle.OnShutdown("postgres", pool.Close)
	}

	manager := encounter.NewManager(controller, recorder, logger)
	router := api.NewRouter(api.NewHandler(manager, records, logger), cfg.Server.Mode)
	lifecycle.Add("http", server.NewHTTPService(cfg.Server.Addr(), router, logger))

	logger.Info("arena server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
