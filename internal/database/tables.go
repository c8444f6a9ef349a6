package database

import (
	"database/sql"
	"fmt"
)

// initTables initializes the SQL tables.
func initTables(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := initDownloadsTable(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func initDownloadsTable(tx *sql.Tx) error {
	const query = `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		platform TEXT NOT NULL,
		download_type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL,
		file_size_bytes INTEGER NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create downloads table: %w", err)
	}
	return nil
}
