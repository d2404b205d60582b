// Package sqlite is the SQLite driver for the run-history store.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/tagwise/tagwise/internal/profile"
	"github.com/tagwise/tagwise/store"
)

// DB is the SQLite implementation of store.Driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database named by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
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
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS note_run_result (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
