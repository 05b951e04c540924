package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/wittejm/ecologysim/config"
	"github.com/wittejm/ecologysim/sim"
	"github.com/wittejm/ecologysim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	maxTicks := flag.Int("ticks", 10000, "Stop after N ticks (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed override (0 = use config seed)")
	outputDir := flag.String("output", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", true, "Output window stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := cfg.Sim.Seed
	if *seed != 0 {
		rngSeed = *seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	cfg.Sim.Seed = rngSeed

	s, err := sim.New(cfg, rand.New(rand.NewSource(rngSeed)))
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	collector := telemetry.NewCollector(cfg.Telemetry.WindowTicks)
	s.SetCollector(collector)

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"trees", s.TreeCount(),
		"deer", s.DeerCount(),
		"wolves", s.WolfCount(),
	)

	for {
		s.Advance()

		if collector.ShouldFlush(s.Tick()) {
			stats := collector.Flush(s.Tick(), s.TreeCount(), s.DeerCount(), s.WolfCount())
			if *logStats {
				stats.LogStats()
			}
			if err := om.WriteTelemetry(stats); err != nil {
				slog.Error("failed to write telemetry", "error", err)
				os.Exit(1)
			}
		}

		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			break
		}
	}

	slog.Info("simulation finished",
		"tick", s.Tick(),
		"trees", s.TreeCount(),
		"deer", s.DeerCount(),
		"wolves", s.WolfCount(),
	)
}
