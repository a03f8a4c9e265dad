package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateRecords,
		migrationIndexRecords,
	}
	if db.driver == DriverSQLite {
		migrations = append([]string{pragmaForeignKeys}, migrations...)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const pragmaForeignKeys = `PRAGMA foreign_keys = ON`

// data is TEXT in both engines so the JSON stays readable from a shell.
const migrationCreateRecords = `
CREATE TABLE IF NOT EXISTS records (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (collection, id)
);
`

const migrationIndexRecords = `
CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection, updated_at);
`
