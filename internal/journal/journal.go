// Package journal provides a SQLite-backed record of what each sync run
// imported, plus a cache of the last normalized report per date so that
// late-created daily notes can be reconciled without refetching.
package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eliasvk/tracksync/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS imports (
	date          TEXT PRIMARY KEY,
	tasks         INTEGER NOT NULL DEFAULT 0,
	props_written INTEGER NOT NULL DEFAULT 0,
	imported_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reports (
	date     TEXT NOT NULL,
	position INTEGER NOT NULL,
	task     TEXT NOT NULL,
	seconds  INTEGER NOT NULL,
	UNIQUE(date, position)
);

CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(date);
`

// Store is the journal interface. Consumers should depend on this rather
// than the concrete *DB type to facilitate testing with fakes.
type Store interface {
	RecordImport(dateStr string, tasks, propsWritten int) error
	Imports(limit int) ([]models.ImportRecord, error)
	SaveReport(report models.DailyReport) error
	Report(dateStr string) (models.DailyReport, bool, error)
	Close() error
}

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RecordImport upserts the import row for one date.
func (db *DB) RecordImport(dateStr string, tasks, propsWritten int) error {
	_, err := db.conn.Exec(`
		INSERT INTO imports (date, tasks, props_written, imported_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			tasks         = excluded.tasks,
			props_written = excluded.props_written,
			imported_at   = excluded.imported_at
	`, dateStr, tasks, propsWritten)
	if err != nil {
		return fmt.Errorf("journal: record import: %w", err)
	}
	return nil
}

// Imports returns the most recent import rows, newest date first.
func (db *DB) Imports(limit int) ([]models.ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT date, tasks, props_written, imported_at
		FROM imports ORDER BY date DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list imports: %w", err)
	}
	defer rows.Close()

	var out []models.ImportRecord
	for rows.Next() {
		var rec models.ImportRecord
		if err := rows.Scan(&rec.DateStr, &rec.Tasks, &rec.PropsWritten, &rec.ImportedAt); err != nil {
			return nil, fmt.Errorf("journal: scan import: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate imports: %w", err)
	}
	return out, nil
}

// SaveReport replaces the cached report rows for the report's date within
// a transaction, preserving task order.
func (db *DB) SaveReport(report models.DailyReport) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM reports WHERE date = ?`, report.DateStr); err != nil {
		return fmt.Errorf("journal: clear report: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO reports (date, position, task, seconds) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal: prepare report insert: %w", err)
	}
	defer stmt.Close()

	for i, task := range report.Tasks {
		if _, err := stmt.Exec(report.DateStr, i, task.Name, task.TotalTimeSec); err != nil {
			return fmt.Errorf("journal: insert report row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal: commit: %w", err)
	}
	return nil
}

// Report returns the cached report for a date. Minutes are derived state
// and are recomputed here rather than stored.
func (db *DB) Report(dateStr string) (models.DailyReport, bool, error) {
	rows, err := db.conn.Query(`
		SELECT task, seconds FROM reports WHERE date = ? ORDER BY position
	`, dateStr)
	if err != nil {
		return models.DailyReport{}, false, fmt.Errorf("journal: read report: %w", err)
	}
	defer rows.Close()

	report := models.DailyReport{DateStr: dateStr}
	for rows.Next() {
		var name string
		var sec int
		if err := rows.Scan(&name, &sec); err != nil {
			return models.DailyReport{}, false, fmt.Errorf("journal: scan report row: %w", err)
		}
		report.Tasks = append(report.Tasks, models.TaskDuration{
			Name:         name,
			TotalTimeSec: sec,
			TotalTimeMin: models.RoundMinutes(sec),
		})
	}
	if err := rows.Err(); err != nil {
		return models.DailyReport{}, false, fmt.Errorf("journal: iterate report rows: %w", err)
	}
	if len(report.Tasks) == 0 {
		return models.DailyReport{}, false, nil
	}
	return report, true, nil
}
