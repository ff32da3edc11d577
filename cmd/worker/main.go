package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aevon-lab/event-worker/internal/app"
	corecfg "github.com/aevon-lab/event-worker/internal/core/config"
	"github.com/aevon-lab/event-worker/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML configuration file")
	flag.Parse()

	// 0. Bootstrap logger, replaced once the config is known
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(telemetry.NewLogger(cfg.Log, os.Stdout))
	slog.Info("Loaded config", "config", cfg)

	// 2. Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 3. SIGINT / SIGTERM start the drain
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, reg); err != nil {
		slog.Error("Worker stopped with error", "error", err)
		stop()
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}
