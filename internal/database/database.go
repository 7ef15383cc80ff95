package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pathprune/internal/prune"
)

// HistoryDB manages the SQLite database for prune history
type HistoryDB struct {
	db *sql.DB
}

// PruneRecord represents a single recorded prune attempt
type PruneRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	ObjectType   string
	Size         int64
	ErrorMessage string
	CreatedAt    time.Time
}

// NewHistoryDB creates a new database connection and initializes the schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A simple query instead of Ping() forces SQLite to create the file
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL allows the query CLI to read while a run is writing
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return hdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (h *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS prunes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON prunes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON prunes(action);
	CREATE INDEX IF NOT EXISTS idx_path ON prunes(path);
	CREATE INDEX IF NOT EXISTS idx_size ON prunes(size);
	CREATE INDEX IF NOT EXISTS idx_created_at ON prunes(created_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := h.db.Exec(schema)
	return err
}

// RecordResult inserts one prune attempt into the database
func (h *HistoryDB) RecordResult(r prune.Result) error {
	errMsg := ""
	if r.Err != nil {
		errMsg = r.Err.Error()
	}

	query := `
	INSERT INTO prunes (
		timestamp, action, path, file_name, object_type, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(
		query,
		r.EvaluatedAt,
		string(r.Outcome),
		r.Path,
		filepath.Base(r.Path),
		string(r.ObjectType),
		r.Size,
		errMsg,
	)
	return err
}

// RecordRun inserts all results of one run
func (h *HistoryDB) RecordRun(results []prune.Result) error {
	for _, r := range results {
		if err := h.RecordResult(r); err != nil {
			return fmt.Errorf("record %s: %w", r.Path, err)
		}
	}
	return nil
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (h *HistoryDB) Vacuum() error {
	_, err := h.db.Exec("VACUUM")
	return err
}
