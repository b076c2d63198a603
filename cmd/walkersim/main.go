// Command walkersim runs the walker population simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aravindSwamy94/carla/internal/api"
	"github.com/aravindSwamy94/carla/internal/config"
	"github.com/aravindSwamy94/carla/internal/engine"
	"github.com/aravindSwamy94/carla/internal/persistence"
	"github.com/aravindSwamy94/carla/internal/sim"
	"github.com/aravindSwamy94/carla/internal/walker"
	"github.com/aravindSwamy94/carla/internal/world"
)

// journalEvery is how often (in ticks) accumulated events are flushed to
// the journal.
const journalEvery = 200

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	// ── Journal ───────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("journal opened", "path", cfg.DBPath)

	// ── Terrain and spawn point discovery ─────────────────────────────
	genCfg := world.DefaultGenConfig()
	genCfg.Size = cfg.World.Size
	genCfg.CellSpacing = cfg.World.CellSpacing
	genCfg.Seed = cfg.World.Seed

	slog.Info("generating terrain", "size", genCfg.Size, "seed", genCfg.Seed)
	terrain := world.Generate(genCfg)

	discCfg := world.DefaultDiscoverConfig()
	discCfg.MinSpacing = cfg.World.MinSpacing
	points := world.DiscoverSpawnPoints(terrain, discCfg)

	// ── Population manager ────────────────────────────────────────────
	stage := sim.NewStage(terrain)
	mgr := walker.NewManager(walker.Config{
		TargetPopulation:    cfg.TargetPopulation,
		UseFixedSeed:        cfg.UseFixedSeed,
		Seed:                cfg.Seed,
		MinimumWalkDistance: cfg.MinimumWalkDistance,
	}, stage)
	mgr.Start(points)

	db.SaveMeta("world_seed", fmt.Sprintf("%d", cfg.World.Seed))
	db.SaveMeta("started_at", time.Now().UTC().Format(time.RFC3339))
	if err := db.AppendEvents(mgr.DrainEvents()); err != nil {
		slog.Error("journal write failed", "error", err)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = time.Duration(cfg.TickIntervalMs) * time.Millisecond

	// The manager decides before the substrate moves, matching the
	// pre-physics tick order of the spawner.
	eng.OnTick = func(tick uint64) {
		mgr.Tick(tick)
		stage.Advance()

		if tick%journalEvery == 0 {
			if err := db.AppendEvents(mgr.DrainEvents()); err != nil {
				slog.Error("journal write failed", "error", err)
			}
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("WALKERSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("WALKERSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Mgr:      mgr,
		Eng:      eng,
		DB:       db,
		Points:   points,
		Port:     cfg.APIPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("walkersim: target %d walkers, %d spawn points discovered.\n",
		cfg.TargetPopulation, len(points))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final journal flush.
	if err := db.AppendEvents(mgr.DrainEvents()); err != nil {
		slog.Error("final journal write failed", "error", err)
	}
	fmt.Println("Simulation stopped.")
}
