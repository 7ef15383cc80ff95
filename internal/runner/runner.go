// Package runner orchestrates a prune run: probe disk, execute the pruner,
// emit the report, persist history, update metrics. Watch mode repeats the
// run on a ticker until the context is cancelled.
package runner

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"pathprune/internal/config"
	"pathprune/internal/database"
	"pathprune/internal/disk"
	"pathprune/internal/metrics"
	"pathprune/internal/prune"
	"pathprune/internal/report"
	"pathprune/internal/safety"
)

var errNilConfig = errors.New("nil config")

// RunOnce performs a single prune run and returns its results.
func RunOnce(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *database.HistoryDB, out io.Writer) ([]prune.Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return nil, errNilConfig
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()
	metrics.RecordRun()
	updateDiskMetrics(cfg, logger)

	pruner := prune.NewPruner(logger, dryRun)
	pruner.SetValidator(safety.NewValidator(cfg.AllowedRoots(), cfg.ProtectedPaths))

	results := pruner.Run(cfg.PrunePaths())

	if out != nil {
		report.NewWriter(out).WriteAll(results)
	}

	recordResults(results, db, logger)

	elapsed := time.Since(start).Seconds()
	metrics.RunDuration.Observe(elapsed)

	logger.Printf("run complete: paths=%d duration=%.3fs", len(results), elapsed)
	return results, nil
}

// Run repeats RunOnce on the configured interval until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, db *database.HistoryDB, out io.Writer) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errNilConfig
	}

	if _, err := RunOnce(ctx, cfg, dryRun, logger, db, out); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := RunOnce(ctx, cfg, dryRun, logger, db, out); err != nil {
				logger.Printf("error running cycle: %v", err)
				metrics.ErrorsTotal.Inc()
			}
		}
	}
}

// HadFailures reports whether any path failed or was blocked.
func HadFailures(results []prune.Result) bool {
	for _, r := range results {
		if r.Outcome == prune.OutcomeFailed || r.Outcome == prune.OutcomeBlocked {
			return true
		}
	}
	return false
}

// recordResults persists outcomes and updates the per-outcome counters.
// A history write failure is logged, never fatal to the run.
func recordResults(results []prune.Result, db *database.HistoryDB, logger *log.Logger) {
	for _, r := range results {
		switch r.Outcome {
		case prune.OutcomeDeleted:
			metrics.PathsDeletedTotal.Inc()
			metrics.BytesReclaimedTotal.Add(float64(r.Size))
		case prune.OutcomeNotFound:
			metrics.PathsNotFoundTotal.Inc()
		case prune.OutcomeFailed, prune.OutcomeBlocked:
			metrics.PathsFailedTotal.Inc()
		}

		if db != nil {
			if err := db.RecordResult(r); err != nil {
				logger.Printf("failed to record history for %s: %v", r.Path, err)
				metrics.ErrorsTotal.Inc()
			}
		}
	}
}

// updateDiskMetrics refreshes the free-space gauges for the configured roots
func updateDiskMetrics(cfg *config.Config, logger *log.Logger) {
	for _, root := range cfg.AllowedRoots() {
		u, err := disk.GetUsage(root)
		if err != nil {
			logger.Printf("failed to get disk usage for %s: %v", root, err)
			continue
		}
		metrics.UpdateDiskMetrics(root, u.FreeBytes, u.TotalBytes)
	}
}
