package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ReisCook/100zombies/internal/ai"
	"github.com/ReisCook/100zombies/internal/config"
	"github.com/ReisCook/100zombies/internal/db"
	"github.com/ReisCook/100zombies/internal/model"
	"github.com/ReisCook/100zombies/internal/spawn"
	"github.com/ReisCook/100zombies/internal/world"
)

const WorldConfigPath = "config/worldserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := WorldConfigPath
	if p := os.Getenv("ZOMBIES_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorldServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("world server starting", "log_level", cfg.LogLevel, "tick_millis", cfg.TickMillis)

	archetypes, regions, err := loadPopulationData(ctx, cfg)
	if err != nil {
		return err
	}

	registry := world.NewRegistry()
	space := world.NewSpace()
	player := world.NewPlayer(model.NewVec3(0, 0, 0), 100)

	assets := world.NewLibrary()
	assets.AddModel(model.DefaultArchetypeID)
	for _, a := range archetypes {
		assets.AddModel(a.ID)
	}
	for _, anim := range []string{"idle", "run", "attack", "death"} {
		assets.AddAnimation(anim, 1.0)
	}

	manager := spawn.NewManager(registry, space, assets, player)
	manager.Configure(cfg.Population.Patch())

	if len(archetypes) > 0 {
		if err := manager.RegisterArchetypes(archetypes); err != nil {
			return fmt.Errorf("registering archetypes: %w", err)
		}
	}
	if err := manager.ConfigureSpawnAreas(regions); err != nil {
		return fmt.Errorf("configuring spawn areas: %w", err)
	}

	if manager.Config().Preload {
		manager.SetPreloadProgress(func(done, total int) {
			slog.Info("preloading population", "done", done, "total", total)
		})
		if err := manager.PreloadAll(ctx); err != nil {
			return err
		}
		manager.ActivateInitialBatch()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tickLoop(gctx, cfg.TickMillis, space, registry, manager)
	})

	g.Go(func() error {
		return watchConfig(gctx, cfgPath, manager)
	})

	return g.Wait()
}

// tickLoop drives the fixed simulation tick: physics step, per-entity
// updates, then population bookkeeping.
func tickLoop(ctx context.Context, tickMillis int, space *world.Space, registry *world.Registry, manager *spawn.Manager) error {
	if tickMillis <= 0 {
		tickMillis = 50
	}
	dt := float64(tickMillis) / 1000.0

	ticker := time.NewTicker(time.Duration(tickMillis) * time.Millisecond)
	defer ticker.Stop()

	slog.Info("tick loop started", "interval_ms", tickMillis)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick loop stopping")
			return ctx.Err()

		case <-ticker.C:
			space.Step(dt)
			registry.UpdateAll(dt)
			manager.Tick(dt)
		}
	}
}

// watchConfig reloads archetype, spawn region, and population sections
// into the running manager when the config file changes.
func watchConfig(ctx context.Context, cfgPath string, manager *spawn.Manager) error {
	watcher, err := config.NewWatcher(cfgPath)
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
		return nil
	}
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			reloadConfig(path, manager)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

func reloadConfig(path string, manager *spawn.Manager) {
	cfg, err := config.LoadWorldServer(path)
	if err != nil {
		slog.Warn("config reload failed", "error", err)
		return
	}

	manager.Configure(cfg.Population.Patch())

	if archetypes := cfg.ArchetypeList(); len(archetypes) > 0 {
		if err := manager.RegisterArchetypes(archetypes); err != nil {
			slog.Warn("archetype reload failed", "error", err)
		}
	}

	regions, err := cfg.RegionList()
	if err != nil {
		slog.Warn("spawn region reload failed", "error", err)
		return
	}
	if err := manager.ConfigureSpawnAreas(regions); err != nil {
		slog.Warn("spawn region reload failed", "error", err)
		return
	}

	slog.Info("config reloaded", "path", path)
}

// loadPopulationData loads archetypes and spawn regions from Postgres when
// configured, falling back to the config file lists. Database trouble is
// never fatal: visual and data fidelity degrade before gameplay stops.
func loadPopulationData(ctx context.Context, cfg config.WorldServer) ([]model.Archetype, []model.SpawnRegion, error) {
	fileRegions, err := cfg.RegionList()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing spawn regions: %w", err)
	}
	fileArchetypes := cfg.ArchetypeList()

	if !cfg.UseDatabase {
		return fileArchetypes, fileRegions, nil
	}

	dsn := cfg.Database.DSN()
	if err := db.RunMigrations(ctx, dsn); err != nil {
		slog.Warn("migrations failed, using config data", "error", err)
		return fileArchetypes, fileRegions, nil
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		slog.Warn("database unavailable, using config data", "error", err)
		return fileArchetypes, fileRegions, nil
	}
	defer database.Close()

	archetypes, err := db.NewArchetypeRepository(database.Pool()).LoadAll(ctx)
	if err != nil {
		slog.Warn("loading archetypes failed, using config data", "error", err)
		return fileArchetypes, fileRegions, nil
	}

	regions, err := db.NewRegionRepository(database.Pool()).LoadAll(ctx)
	if err != nil {
		slog.Warn("loading spawn regions failed, using config data", "error", err)
		return fileArchetypes, fileRegions, nil
	}

	slog.Info("population data loaded from database",
		"archetypes", len(archetypes),
		"spawn_regions", len(regions))
	return archetypes, regions, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
