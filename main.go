package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/scurry-sim/scurry/config"
	"github.com/scurry-sim/scurry/sim"
	"github.com/scurry-sim/scurry/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	riskAversion := flag.Float64("risk-aversion", -1, "Override agent risk aversion (negative = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *riskAversion >= 0 {
		cfg.Agent.RiskAversion = *riskAversion
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ticks := cfg.Run.MaxTicks
	if *maxTicks > 0 {
		ticks = *maxTicks
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	session, err := sim.NewSession(cfg, rngSeed)
	if err != nil {
		slog.Error("failed to set up session", "error", err)
		os.Exit(1)
	}

	slog.Info("starting foraging run",
		"seed", rngSeed,
		"grid_width", cfg.Grid.Width,
		"grid_height", cfg.Grid.Height,
		"risk_aversion", cfg.Agent.RiskAversion,
		"max_ticks", ticks,
	)

	summary, err := session.Run(ticks, om)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("run finished",
		"ticks", summary.Ticks,
		"agent_energy", summary.AgentEnergy,
		"stored_energy", summary.StoredEnergy,
		"stored_count", summary.StoredCount,
		"food_remaining", summary.FoodRemaining,
	)
}
