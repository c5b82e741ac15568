package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/population"
	"github.com/pthm-cable/ecosim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and hall of fame")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	perf := flag.Bool("perf", false, "Collect per-phase tick timing")
	hallPath := flag.String("hall-of-fame", "", "Seed the hall of fame from a hall_of_fame.json")
	outbreakTick := flag.Int64("outbreak-tick", -1, "Trigger a disease outbreak at this tick (-1 = never)")
	outbreakDisease := flag.String("outbreak-disease", "plague", "Disease for the triggered outbreak")
	outbreakRate := flag.Float64("outbreak-rate", 0.2, "Fraction of organisms infected by the outbreak")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	runID := uuid.New()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run", runID.String())
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
		cfg.Recompute()
	}

	outbreakType, err := disease.ParseType(*outbreakDisease)
	if err != nil {
		slog.Error("invalid outbreak disease", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// One subdirectory per run.
	var runDir string
	if *outputDir != "" {
		runDir = filepath.Join(*outputDir, runID.String())
	}
	output, err := telemetry.NewOutputManager(runDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	var hall *telemetry.HallOfFame
	if *hallPath != "" {
		hall, err = telemetry.LoadHallOfFameFromFile(*hallPath, cfg.HallOfFame, rand.New(rand.NewSource(rngSeed)))
		if err != nil {
			slog.Error("failed to load hall of fame", "error", err)
			os.Exit(1)
		}
	}

	m, err := population.New(population.Options{
		Seed:     rngSeed,
		Config:   cfg,
		Hall:     hall,
		Output:   output,
		LogStats: *logStats,
		Perf:     *perf,
	})
	if err != nil {
		slog.Error("failed to create population", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", *maxTicks,
		"output_dir", output.Dir(),
	)

	start := time.Now()
	for *maxTicks <= 0 || m.Tick() < *maxTicks {
		if m.Tick() == *outbreakTick {
			m.TriggerOutbreak(outbreakType, float32(*outbreakRate), nil, 0)
		}
		if err := m.Update(cfg.Derived.DT32); err != nil {
			slog.Error("simulation failed", "error", err)
			break
		}
	}

	final := m.Stats()
	slog.Info("simulation finished",
		"ticks", m.Tick(),
		"elapsed", time.Since(start).String(),
		"population", final.Population,
		"births", final.TotalBirths,
		"deaths", final.TotalDeaths,
		"max_generation", final.MaxGeneration,
	)
	if err := m.Close(); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
}
