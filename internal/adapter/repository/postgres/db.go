package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=virtualcfo sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS statement_line_items (
		session_id UUID        NOT NULL,
		statement  TEXT        NOT NULL,
		period     TEXT        NOT NULL,
		line_item  TEXT        NOT NULL,
		value      NUMERIC     NOT NULL,
		PRIMARY KEY (session_id, statement, period, line_item)
	);

	CREATE TABLE IF NOT EXISTS statement_periods (
		session_id UUID        NOT NULL,
		statement  TEXT        NOT NULL,
		period     TEXT        NOT NULL,
		PRIMARY KEY (session_id, statement, period)
	);

	CREATE TABLE IF NOT EXISTS statement_sessions (
		session_id UUID        PRIMARY KEY,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// Migrate creates the tables used by the repositories if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
