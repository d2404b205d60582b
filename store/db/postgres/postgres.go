// Package postgres is the PostgreSQL driver for the run-history store.
package postgres

import (
	"context"
	"database/sql"

	// PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tagwise/tagwise/internal/profile"
	"github.com/tagwise/tagwise/store"
)

// DB is the PostgreSQL implementation of store.Driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection from the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}
	return &DB{db: db, profile: profile}, nil
}

// GetDB returns the underlying database handle.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS tagging_run (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	processed INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS note_run_result (
	id SERIAL PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES tagging_run (id),
	path TEXT NOT NULL,
	state TEXT NOT NULL,
	strategy TEXT NOT NULL DEFAULT '',
	tags_added INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_note_run_result_run_id ON note_run_result (run_id);
`

// Migrate applies the schema.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
