// Package report renders the per-path prune outcomes as the line-oriented,
// human-readable status messages the tool prints to stdout.
package report

import (
	"fmt"
	"io"

	"pathprune/internal/prune"
)

// Writer renders prune results, one status line per path.
type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Write emits the status line for a single result.
//
// The wording is a compatibility contract with the predecessor tool:
//
//	Success: Deleted <path>
//	Failed: Could not delete <path>. It might be in use.
//	<error text>
//	Not Found: <path>
func (w *Writer) Write(r prune.Result) {
	switch r.Outcome {
	case prune.OutcomeDeleted:
		fmt.Fprintf(w.out, "Success: Deleted %s\n", r.Path)
	case prune.OutcomeNotFound:
		fmt.Fprintf(w.out, "Not Found: %s\n", r.Path)
	case prune.OutcomeDryRun:
		fmt.Fprintf(w.out, "Dry Run: Would delete %s\n", r.Path)
	case prune.OutcomeFailed, prune.OutcomeBlocked:
		fmt.Fprintf(w.out, "Failed: Could not delete %s. It might be in use.\n", r.Path)
		if r.Err != nil {
			fmt.Fprintln(w.out, r.Err.Error())
		}
	}
}

// WriteAll emits status lines for every result in order.
func (w *Writer) WriteAll(results []prune.Result) {
	for _, r := range results {
		w.Write(r)
	}
}
