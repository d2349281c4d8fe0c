package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// Database represents the local persistence layer. It stands in for the
// browser's local storage of the original dApp: wallet selection and the
// activity log survive restarts.
type Database struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS wallet_state (
	key        TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity (
	id         TEXT PRIMARY KEY,
	op         TEXT NOT NULL,
	status     TEXT NOT NULL,
	token_id   TEXT NOT NULL DEFAULT '',
	tx_hash    TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	settled_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_settled_at ON activity (settled_at DESC);
`

// NewDatabase opens the database file and bootstraps the schema
func NewDatabase(path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the sqlx.DB instance
func (d *Database) GetDB() *sqlx.DB {
	return d.db
}
