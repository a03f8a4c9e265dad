package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Record is one stored document
type Record struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

// DB wraps the SQL connection and stores JSON documents keyed by
// collection and id.
type DB struct {
	*sqlx.DB
	driver string
}

// DefaultDBPath returns the default database path (~/.bizflow/bizflow.db)
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".bizflow", "bizflow.db"), nil
}

// DriverForDSN picks postgres for postgres:// URLs and sqlite otherwise.
func DriverForDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open opens or creates the database and runs migrations
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			dir := filepath.Dir(dsn)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between our own goroutines
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, driver: driver}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Driver returns the driver name the database was opened with
func (db *DB) Driver() string {
	return db.driver
}

// Get loads one record. The boolean is false when nothing is stored
// under collection/id.
func (db *DB) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	var data string
	err := db.GetContext(ctx, &data, db.Rebind(
		`SELECT data FROM records WHERE collection = ? AND id = ?`),
		collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return []byte(data), true, nil
}

// Put inserts or replaces a record
func (db *DB) Put(ctx context.Context, collection, id string, data []byte) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO records (collection, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`),
		collection, id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error at
// this layer; callers decide whether absence matters.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`DELETE FROM records WHERE collection = ? AND id = ?`),
		collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// List returns every record payload in a collection, oldest write first
func (db *DB) List(ctx context.Context, collection string) ([][]byte, error) {
	var records []Record
	err := db.SelectContext(ctx, &records, db.Rebind(`
		SELECT id, data FROM records
		WHERE collection = ?
		ORDER BY updated_at, id`),
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([][]byte, 0, len(records))
	for _, r := range records {
		out = append(out, []byte(r.Data))
	}
	return out, nil
}
