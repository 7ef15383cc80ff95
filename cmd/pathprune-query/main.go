package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"pathprune/internal/database"
	"pathprune/internal/exitcodes"
)

func main() {
	dbPath := pflag.String("db", "/var/lib/pathprune/history.db", "Path to history database")
	recent := pflag.Int("recent", 0, "Show N most recent prune attempts")
	stats := pflag.Bool("stats", false, "Show prune statistics")
	action := pflag.String("action", "", "Filter by action (DELETE, NOT_FOUND, ERROR, BLOCKED, DRY_RUN)")
	pathPattern := pflag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := pflag.Int("largest", 0, "Show N largest removals")
	days := pflag.Int("days", 30, "Number of days for statistics")
	jsonOutput := pflag.Bool("json", false, "Output in JSON format")
	pflag.Parse()

	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		records, err := db.GetRecentPrunes(*recent)
		showRecords(records, err, *jsonOutput)
	case *action != "":
		records, err := db.GetPrunesByAction(*action)
		showRecords(records, err, *jsonOutput)
	case *pathPattern != "":
		records, err := db.GetPrunesByPath(*pathPattern)
		showRecords(records, err, *jsonOutput)
	case *largest > 0:
		records, err := db.GetLargestPrunes(*largest)
		showRecords(records, err, *jsonOutput)
	default:
		pflag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  pathprune-query --recent 10          # Show 10 most recent attempts")
		fmt.Println("  pathprune-query --stats              # Show prune statistics")
		fmt.Println("  pathprune-query --action DELETE      # Show only successful removals")
		fmt.Println("  pathprune-query --path '%/Lib%'      # Show attempts under Lib trees")
		fmt.Println("  pathprune-query --largest 10         # Show 10 largest removals")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.HistoryDB, days int, jsonOutput bool) {
	stats, err := db.GetPruneStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Prune Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Deleted:          %d\n", stats.TotalDeleted)
	fmt.Printf("Not Found:        %d\n", stats.TotalNotFound)
	fmt.Printf("Failed:           %d\n", stats.TotalFailed)
	fmt.Printf("Blocked:          %d\n", stats.TotalBlocked)
	fmt.Printf("Space Reclaimed:  %s\n\n", formatBytes(stats.BytesReclaimed))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecords(records []database.PruneRecord, err error, jsonOutput bool) {
	if err != nil {
		log.Fatalf("ERROR: Query failed: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACTION\tOBJECT\tSIZE\tPATH\tERROR")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			r.ObjectType,
			formatBytes(r.Size),
			r.Path,
			r.ErrorMessage,
		)
	}
	w.Flush()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
