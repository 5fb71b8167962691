package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []struct {
	name string
	stmt string
}{
	{"subscribers", `
		CREATE TABLE IF NOT EXISTS subscribers (
			phone TEXT PRIMARY KEY,
			language TEXT NOT NULL DEFAULT 'en'
		);`},
	{"broadcasts", `
		CREATE TABLE IF NOT EXISTS broadcasts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			channel TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin',
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`},
}

// OpenSQLite opens the file at path (":memory:" for tests) and applies the
// schema. SQLite serializes writers, so the pool holds one connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	for _, table := range sqliteSchema {
		if _, err := db.ExecContext(ctx, table.stmt); err != nil {
			return fmt.Errorf("create %s table: %w", table.name, err)
		}
	}
	log.WithField("tables", len(sqliteSchema)).Debug("sqlite schema ready")
	return nil
}
