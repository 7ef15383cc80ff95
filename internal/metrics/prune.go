package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prune subsystem metrics
var (
	// RunDuration tracks how long prune runs take
	RunDuration prometheus.Histogram

	// BytesReclaimedTotal tracks total bytes reclaimed across all runs
	BytesReclaimedTotal prometheus.Counter

	// PathsDeletedTotal tracks total paths removed
	PathsDeletedTotal prometheus.Counter

	// PathsNotFoundTotal tracks paths that were already absent
	PathsNotFoundTotal prometheus.Counter

	// PathsFailedTotal tracks removal attempts that failed or were blocked
	PathsFailedTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last prune run
	LastRunTimestamp prometheus.Gauge

	// ErrorsTotal tracks total errors encountered outside per-path outcomes
	ErrorsTotal prometheus.Counter

	// FreeSpacePercent tracks current free space percentage per monitored path
	FreeSpacePercent *prometheus.GaugeVec

	// PathFreeBytes tracks free space on the filesystem containing the path
	PathFreeBytes *prometheus.GaugeVec

	// PathTotalBytes tracks total capacity of the filesystem containing the path
	PathTotalBytes *prometheus.GaugeVec
)

// initPruneMetrics initializes all prune subsystem metrics
func initPruneMetrics() {
	RunDuration = NewDurationHistogram(
		"pathprune_run_duration_seconds",
		"Duration of prune runs in seconds.",
	)

	BytesReclaimedTotal = NewCounter(
		"pathprune_bytes_reclaimed_total",
		"Total bytes reclaimed by pathprune.",
	)

	PathsDeletedTotal = NewCounter(
		"pathprune_paths_deleted_total",
		"Total number of paths removed by pathprune.",
	)

	PathsNotFoundTotal = NewCounter(
		"pathprune_paths_not_found_total",
		"Total number of paths found already absent.",
	)

	PathsFailedTotal = NewCounter(
		"pathprune_paths_failed_total",
		"Total number of removal attempts that failed or were blocked.",
	)

	LastRunTimestamp = NewGauge(
		"pathprune_last_run_timestamp",
		"Timestamp of the last prune run (Unix epoch seconds).",
	)

	ErrorsTotal = NewCounter(
		"pathprune_errors_total",
		"Total number of errors encountered by pathprune.",
	)

	FreeSpacePercent = NewGaugeVec(
		"pathprune_free_space_percent",
		"Current free space percentage for monitored paths.",
		[]string{"path"},
	)

	PathFreeBytes = NewGaugeVec(
		"pathprune_path_free_bytes",
		"Free space available on the filesystem containing this path.",
		[]string{"path"},
	)

	PathTotalBytes = NewGaugeVec(
		"pathprune_path_total_bytes",
		"Total capacity of the filesystem containing this path.",
		[]string{"path"},
	)
}

// registerPruneMetrics registers all prune metrics with Prometheus
func registerPruneMetrics() {
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(BytesReclaimedTotal)
	prometheus.MustRegister(PathsDeletedTotal)
	prometheus.MustRegister(PathsNotFoundTotal)
	prometheus.MustRegister(PathsFailedTotal)
	prometheus.MustRegister(LastRunTimestamp)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(FreeSpacePercent)
	prometheus.MustRegister(PathFreeBytes)
	prometheus.MustRegister(PathTotalBytes)
}

// RecordRun updates the last run timestamp to current time
func RecordRun() {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// UpdateDiskMetrics updates the filesystem gauges for a path
func UpdateDiskMetrics(path string, freeBytes, totalBytes int64) {
	freePercent := 100.0
	if totalBytes > 0 {
		freePercent = (float64(freeBytes) / float64(totalBytes)) * 100.0
	}
	FreeSpacePercent.WithLabelValues(path).Set(freePercent)
	PathFreeBytes.WithLabelValues(path).Set(float64(freeBytes))
	PathTotalBytes.WithLabelValues(path).Set(float64(totalBytes))
}
