package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History records snapshot and plan runs
type History struct {
	db *sql.DB
}

// RunRecord represents a single snapshot or plan run
type RunRecord struct {
	ID         int64
	Mode       string // "snapshot", "plan"
	Directory  string
	StatePath  string
	StartTime  time.Time
	EndTime    time.Time
	Status     string // "success", "failed"
	Operations int    // planned operations ("plan" runs only)
	Entries    int    // tree entries walked
	Error      string
}

// NewHistory opens (or creates) the run history database under dataDir
func NewHistory(dataDir string) (*History, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "snapsync.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	history := &History{db: db}

	if err := history.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return history, nil
}

// initSchema creates the database schema
func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		directory TEXT NOT NULL,
		state_path TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		operations INTEGER DEFAULT 0,
		entries INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_mode_time ON runs(mode, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := h.db.Exec(schema)
	return err
}

// Record stores one run
func (h *History) Record(record RunRecord) error {
	if record.Mode != "snapshot" && record.Mode != "plan" {
		return fmt.Errorf("invalid mode: %s (must be 'snapshot' or 'plan')", record.Mode)
	}
	if record.Status != "success" && record.Status != "failed" {
		return fmt.Errorf("invalid status: %s (must be 'success' or 'failed')", record.Status)
	}

	query := `
		INSERT INTO runs (mode, directory, state_path, start_time, end_time, status, operations, entries, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(query,
		record.Mode,
		record.Directory,
		record.StatePath,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.Operations,
		record.Entries,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	return nil
}

// Recent retrieves the most recent runs, newest first
func (h *History) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT id, mode, directory, state_path, start_time, end_time, status, operations, entries, error
		FROM runs
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		err := rows.Scan(
			&record.ID,
			&record.Mode,
			&record.Directory,
			&record.StatePath,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.Operations,
			&record.Entries,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// LastSuccess retrieves the last successful run for a mode
func (h *History) LastSuccess(mode string) (*RunRecord, error) {
	query := `
		SELECT id, mode, directory, state_path, start_time, end_time, status, operations, entries, error
		FROM runs
		WHERE mode = ? AND status = 'success'
		ORDER BY start_time DESC
		LIMIT 1
	`

	var record RunRecord
	err := h.db.QueryRow(query, mode).Scan(
		&record.ID,
		&record.Mode,
		&record.Directory,
		&record.StatePath,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.Operations,
		&record.Entries,
		&record.Error,
	)

	if err == sql.ErrNoRows {
		return nil, nil // No successful run found
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
