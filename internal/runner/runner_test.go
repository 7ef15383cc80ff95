package runner

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pathprune/internal/config"
	"pathprune/internal/database"
	"pathprune/internal/metrics"
	"pathprune/internal/prune"
)

func init() {
	// Initialize metrics once for all tests
	metrics.Init()
}

func venvConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	baseDir := t.TempDir()

	for _, dir := range []string{"Include", "Lib", "Scripts"} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(baseDir, "Lib", "mod.py"), []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "pyvenv.cfg"), []byte("home = /usr"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		BaseDir: baseDir,
		Entries: config.DefaultEntries,
	}
	return cfg, baseDir
}

func TestRunOncePrunesVenvSkeleton(t *testing.T) {
	cfg, baseDir := venvConfig(t)

	var out bytes.Buffer
	results, err := RunOnce(context.Background(), cfg, false, log.Default(), nil, &out)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Outcome != prune.OutcomeDeleted {
			t.Errorf("Expected DELETE for %s, got %s", r.Path, r.Outcome)
		}
	}

	for _, entry := range config.DefaultEntries {
		p := filepath.Join(baseDir, entry)
		if _, err := os.Lstat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}

	// Base dir itself survives
	if _, err := os.Lstat(baseDir); err != nil {
		t.Errorf("Base dir must survive the prune: %v", err)
	}

	if !strings.Contains(out.String(), "Success: Deleted "+filepath.Join(baseDir, "Lib")) {
		t.Errorf("Expected success report line for Lib, got:\n%s", out.String())
	}
}

func TestRunOnceSecondRunReportsNotFound(t *testing.T) {
	cfg, _ := venvConfig(t)

	if _, err := RunOnce(context.Background(), cfg, false, log.Default(), nil, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	var out bytes.Buffer
	results, err := RunOnce(context.Background(), cfg, false, log.Default(), nil, &out)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for _, r := range results {
		if r.Outcome != prune.OutcomeNotFound {
			t.Errorf("Expected NOT_FOUND for %s, got %s", r.Path, r.Outcome)
		}
	}
	if !strings.Contains(out.String(), "Not Found: ") {
		t.Errorf("Expected Not Found report lines, got:\n%s", out.String())
	}
}

func TestRunOnceDryRunDeletesNothing(t *testing.T) {
	cfg, baseDir := venvConfig(t)

	results, err := RunOnce(context.Background(), cfg, true, log.Default(), nil, nil)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	for _, r := range results {
		if r.Outcome != prune.OutcomeDryRun {
			t.Errorf("Expected DRY_RUN for %s, got %s", r.Path, r.Outcome)
		}
	}

	for _, entry := range config.DefaultEntries {
		if _, err := os.Lstat(filepath.Join(baseDir, entry)); err != nil {
			t.Errorf("Dry run must not remove %s: %v", entry, err)
		}
	}
}

func TestRunOnceRecordsHistory(t *testing.T) {
	cfg, _ := venvConfig(t)

	db, err := database.NewHistoryDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open history db: %v", err)
	}
	defer db.Close()

	if _, err := RunOnce(context.Background(), cfg, false, log.Default(), db, nil); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	records, err := db.GetPrunesByAction("DELETE")
	if err != nil {
		t.Fatalf("History query failed: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("Expected 4 recorded deletions, got %d", len(records))
	}
}

func TestRunOnceCancelledContext(t *testing.T) {
	cfg, _ := venvConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunOnce(ctx, cfg, false, log.Default(), nil, nil); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunOnceNilConfig(t *testing.T) {
	if _, err := RunOnce(context.Background(), nil, false, log.Default(), nil, nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestHadFailures(t *testing.T) {
	tests := []struct {
		name     string
		results  []prune.Result
		expected bool
	}{
		{"all deleted", []prune.Result{{Outcome: prune.OutcomeDeleted}}, false},
		{"not found only", []prune.Result{{Outcome: prune.OutcomeNotFound}}, false},
		{"one failed", []prune.Result{{Outcome: prune.OutcomeDeleted}, {Outcome: prune.OutcomeFailed}}, true},
		{"one blocked", []prune.Result{{Outcome: prune.OutcomeBlocked}}, true},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HadFailures(tt.results); got != tt.expected {
				t.Errorf("HadFailures = %v, expected %v", got, tt.expected)
			}
		})
	}
}
