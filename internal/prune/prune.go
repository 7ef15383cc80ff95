// Package prune implements the path pruner: a single sequential pass over a
// fixed list of filesystem paths, attempting a forced removal of each and
// recording a per-path outcome. One path's failure never aborts the run.
package prune

import (
	"fmt"
	"log"
	"os"
	"time"

	"pathprune/internal/fsops"
	"pathprune/internal/safety"
)

// Outcome classifies what happened to a single path entry.
type Outcome string

const (
	OutcomeDeleted  Outcome = "DELETE"    // path existed and was removed
	OutcomeNotFound Outcome = "NOT_FOUND" // path was absent, nothing mutated
	OutcomeFailed   Outcome = "ERROR"     // removal was attempted and failed
	OutcomeBlocked  Outcome = "BLOCKED"   // safety validator refused the path
	OutcomeDryRun   Outcome = "DRY_RUN"   // would have been removed
)

// ObjectType mirrors what was found on disk at evaluation time.
type ObjectType string

const (
	ObjectFile      ObjectType = "file"
	ObjectDirectory ObjectType = "directory"
	ObjectMissing   ObjectType = "missing"
)

// Result is the record of one path's prune attempt.
type Result struct {
	Path        string
	Outcome     Outcome
	ObjectType  ObjectType
	Size        int64 // bytes the entry occupied before removal
	Err         error // underlying error for ERROR and BLOCKED outcomes
	EvaluatedAt time.Time
}

// Logger interface for structured logging in prune
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement the Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	parts := make([]interface{}, 0, len(args)+2)
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Pruner performs prune runs with structured logging
type Pruner struct {
	logger    Logger
	deleter   fsops.Deleter
	validator *safety.Validator
	dryRun    bool
}

// NewPruner creates a Pruner. A nil logger falls back to log.Default.
func NewPruner(logger *log.Logger, dryRun bool) *Pruner {
	if logger == nil {
		logger = log.Default()
	}
	return &Pruner{
		logger:  &stdLogger{Logger: logger},
		deleter: fsops.OSDeleter{},
		dryRun:  dryRun,
	}
}

// SetDeleter overrides the deleter, used by tests to prove the dry-run contract
func (p *Pruner) SetDeleter(d fsops.Deleter) {
	p.deleter = d
}

// SetValidator installs a safety validator consulted before every removal
func (p *Pruner) SetValidator(v *safety.Validator) {
	p.validator = v
}

// Run processes each path in order and returns one Result per path, in the
// same order. Failures are terminal for their path but never for the run.
func (p *Pruner) Run(paths []string) []Result {
	p.logger.Info("Starting prune run", "paths", len(paths), "dry_run", p.dryRun)

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, p.pruneOne(path))
	}

	var deleted, notFound, failed int
	var reclaimed int64
	for _, r := range results {
		switch r.Outcome {
		case OutcomeDeleted, OutcomeDryRun:
			deleted++
			reclaimed += r.Size
		case OutcomeNotFound:
			notFound++
		default:
			failed++
		}
	}
	p.logger.Info("Prune run complete",
		"deleted", deleted,
		"not_found", notFound,
		"failed", failed,
		"bytes_reclaimed", reclaimed,
	)

	return results
}

// pruneOne makes exactly one removal attempt for a single path
func (p *Pruner) pruneOne(path string) Result {
	res := Result{Path: path, EvaluatedAt: time.Now()}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Outcome = OutcomeNotFound
			res.ObjectType = ObjectMissing
			p.logger.Info("Path not found", "path", path)
			return res
		}
		// Stat failed for another reason (e.g. permission on the parent).
		// The path may well exist, so treat it as a failed attempt.
		res.Outcome = OutcomeFailed
		res.ObjectType = ObjectMissing
		res.Err = err
		p.logger.Error("Failed to stat", "path", path, "error", err)
		return res
	}

	if info.IsDir() {
		res.ObjectType = ObjectDirectory
		res.Size = fsops.TreeSize(path)
	} else {
		res.ObjectType = ObjectFile
		res.Size = info.Size()
	}

	if p.validator != nil {
		if err := p.validator.ValidateDeleteTarget(path); err != nil {
			res.Outcome = OutcomeBlocked
			res.Err = err
			p.logger.Error("Safety validator blocked path", "path", path, "error", err)
			return res
		}
	}

	if p.dryRun {
		res.Outcome = OutcomeDryRun
		p.logger.Info("[DRY RUN] Would remove", "path", path, "object", res.ObjectType, "size", res.Size)
		return res
	}

	if info.IsDir() {
		err = p.deleter.RemoveAll(path)
	} else {
		err = p.deleter.Remove(path)
	}

	if err != nil {
		// A concurrent removal between stat and delete is not a failure.
		if os.IsNotExist(err) {
			res.Outcome = OutcomeNotFound
			res.ObjectType = ObjectMissing
			res.Size = 0
			p.logger.Info("Path vanished before removal", "path", path)
			return res
		}
		res.Outcome = OutcomeFailed
		res.Err = err
		p.logger.Error("Failed to remove", "path", path, "error", err)
		return res
	}

	res.Outcome = OutcomeDeleted
	p.logger.Info("Removed", "path", path, "object", res.ObjectType, "size", res.Size)
	return res
}
