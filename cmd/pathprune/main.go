package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"pathprune/internal/config"
	"pathprune/internal/database"
	"pathprune/internal/exitcodes"
	"pathprune/internal/logging"
	"pathprune/internal/metrics"
	"pathprune/internal/prune"
	"pathprune/internal/runner"
)

func main() {
	configPath := pflag.StringP("config", "c", "/etc/pathprune/config.yaml", "Path to configuration file")
	dryRun := pflag.Bool("dry-run", false, "Report what would be deleted without deleting")
	watch := pflag.BoolP("watch", "w", false, "Keep running, re-pruning on the configured interval")
	noHistory := pflag.Bool("no-history", false, "Skip recording outcomes to the history database")
	pflag.Parse()

	logger := logging.New()

	logger.Println("pathprune starting")
	logger.Printf("Config file: %s", *configPath)
	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be deleted")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("ERROR: Failed to load config: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	// Recreate the logger now that rotation settings are known
	logger = logging.NewWithConfig(cfg)

	metrics.Init()
	if *watch && cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	var db *database.HistoryDB
	if !*noHistory && cfg.DatabasePath != "" {
		logger.Printf("Opening history database: %s", cfg.DatabasePath)
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if *watch {
		err := runner.Run(ctx, cfg, *dryRun, logger, db, os.Stdout)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		metrics.Shutdown(shutdownCtx, logger)
		shutdownCancel()
		if err != nil && err != context.Canceled {
			logger.Printf("ERROR: Runner failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("pathprune stopped")
		return
	}

	results, err := runner.RunOnce(ctx, cfg, *dryRun, logger, db, os.Stdout)
	if err != nil {
		logger.Printf("ERROR: Prune run failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}

	// Per-path failures are non-fatal and exit 0; only a safety block
	// escalates the exit code.
	if runner.HadFailures(results) {
		logger.Println("Run completed with failures")
		for _, r := range results {
			if r.Outcome == prune.OutcomeBlocked {
				os.Exit(exitcodes.SafetyViolation)
			}
		}
	}
}
