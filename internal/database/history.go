package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/a11yaudit/a11yaudit/internal/model"
)

// historyFileName is the SQLite file created inside the data directory.
const historyFileName = "a11yaudit.db"

// HistoryDB records one row per completed scan.
//
// Design decision: We store summary rows rather than full scan payloads.
// The JSON scan file remains the source of truth for full results; the
// database answers "when did we last scan and how bad was it" without
// parsing every saved file.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// ScanRecord is one row of scan history.
type ScanRecord struct {
	// ID is the auto-assigned row id.
	ID int64

	// ScanDate is when the scan ran, in the scan file's date format.
	ScanDate string

	// URLCount is how many pages the scan covered.
	URLCount int

	// CriticalCount through MinorCount tally aggregated violation
	// groups per severity.
	CriticalCount int
	SeriousCount  int
	ModerateCount int
	MinorCount    int

	// State is the run's terminal state (completed or cancelled).
	State string
}

// Open opens or creates the history database inside dbDir.
// The directory is created if needed.
func Open(dbDir string) (*HistoryDB, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, historyFileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file location.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_date TEXT NOT NULL,
		url_count INTEGER NOT NULL,
		critical_count INTEGER NOT NULL DEFAULT 0,
		serious_count INTEGER NOT NULL DEFAULT 0,
		moderate_count INTEGER NOT NULL DEFAULT 0,
		minor_count INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_scan_date ON scans(scan_date);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScan records a completed scan's summary and returns its row id.
func (h *HistoryDB) SaveScan(ctx context.Context, file *model.ScanFile, state string) (int64, error) {
	counts := file.SeverityCounts()

	result, err := h.db.ExecContext(ctx, `
		INSERT INTO scans (scan_date, url_count, critical_count, serious_count, moderate_count, minor_count, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.Metadata.ScanDate,
		len(file.Metadata.URLs),
		counts[model.SeverityCritical],
		counts[model.SeveritySerious],
		counts[model.SeverityModerate],
		counts[model.SeverityMinor],
		state,
	)
	if err != nil {
		return 0, fmt.Errorf("insert scan record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read scan record id: %w", err)
	}
	return id, nil
}

// ListScans returns scan records newest first, up to limit rows.
// A non-positive limit returns every record.
func (h *HistoryDB) ListScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	query := `
		SELECT id, scan_date, url_count, critical_count, serious_count, moderate_count, minor_count, state
		FROM scans
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(
			&r.ID, &r.ScanDate, &r.URLCount,
			&r.CriticalCount, &r.SeriousCount, &r.ModerateCount, &r.MinorCount,
			&r.State,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan history: %w", err)
	}

	return records, nil
}
