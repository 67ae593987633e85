package export

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/lapse/internal/store"
)

const archiveDDL = `
CREATE TABLE IF NOT EXISTS time_rows (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	date        TEXT NOT NULL,
	category    TEXT NOT NULL,
	app         TEXT NOT NULL DEFAULT '',
	hours       REAL NOT NULL,
	project     TEXT NOT NULL DEFAULT '',
	exported_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_time_rows_date ON time_rows(date);
`

// ToSQLite appends export rows to a sqlite archive, creating the database
// and schema on first use. Handy for feeding the data to external query
// tools without touching the primary ledger.
func ToSQLite(rows []store.Row, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open archive database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(archiveDDL); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO time_rows (date, category, app, hours, project, exported_at) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	exportedAt := time.Now().UTC().Format(time.RFC3339)
	for _, r := range rows {
		if _, err := stmt.Exec(r.Date, r.Category, r.App, r.Hours, r.Project, exportedAt); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
