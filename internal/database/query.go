package database

import (
	"database/sql"
	"time"
)

// PruneStats aggregates history over a time window
type PruneStats struct {
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	TotalDeleted   int            `json:"total_deleted"`
	TotalNotFound  int            `json:"total_not_found"`
	TotalFailed    int            `json:"total_failed"`
	TotalBlocked   int            `json:"total_blocked"`
	BytesReclaimed int64          `json:"bytes_reclaimed"`
	ByAction       map[string]int `json:"by_action"`
}

const recordColumns = `id, timestamp, action, path, file_name, object_type, size, error_message`

// GetRecentPrunes returns the N most recent prune attempts
func (h *HistoryDB) GetRecentPrunes(limit int) ([]PruneRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM prunes
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return h.queryPrunes(query, limit)
}

// GetPrunesByAction returns attempts filtered by action type
func (h *HistoryDB) GetPrunesByAction(action string) ([]PruneRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM prunes
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return h.queryPrunes(query, action)
}

// GetPrunesByPath returns attempts matching a path pattern (SQL LIKE syntax)
func (h *HistoryDB) GetPrunesByPath(pathPattern string) ([]PruneRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM prunes
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return h.queryPrunes(query, pathPattern)
}

// GetLargestPrunes returns the N largest successful removals by size
func (h *HistoryDB) GetLargestPrunes(limit int) ([]PruneRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM prunes
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`

	return h.queryPrunes(query, limit)
}

// GetTotalBytesReclaimed returns total bytes reclaimed in a time range
func (h *HistoryDB) GetTotalBytesReclaimed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM prunes
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := h.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetPruneStats aggregates history for the last N days
func (h *HistoryDB) GetPruneStats(days int) (*PruneStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats := &PruneStats{
		StartDate: start,
		EndDate:   end,
		ByAction:  make(map[string]int),
	}

	rows, err := h.db.Query(`
	SELECT action, COUNT(*)
	FROM prunes
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
		switch action {
		case "DELETE", "DRY_RUN":
			stats.TotalDeleted += count
		case "NOT_FOUND":
			stats.TotalNotFound += count
		case "ERROR":
			stats.TotalFailed += count
		case "BLOCKED":
			stats.TotalBlocked += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reclaimed, err := h.GetTotalBytesReclaimed(start, end)
	if err != nil {
		return nil, err
	}
	stats.BytesReclaimed = reclaimed

	return stats, nil
}

// queryPrunes executes a query and scans results into PruneRecord structs
func (h *HistoryDB) queryPrunes(query string, args ...interface{}) ([]PruneRecord, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PruneRecord
	for rows.Next() {
		var r PruneRecord
		var errMsg sql.NullString
		if err := rows.Scan(
			&r.ID,
			&r.Timestamp,
			&r.Action,
			&r.Path,
			&r.FileName,
			&r.ObjectType,
			&r.Size,
			&errMsg,
		); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
