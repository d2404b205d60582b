// Package store persists tagging run history.
package store

import (
	"context"

	"github.com/tagwise/tagwise/internal/profile"
)

// Store wraps a database driver and exposes run-history operations.
type Store struct {
	driver  Driver
	profile *profile.Profile
}

// New creates a store over the given driver.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateTaggingRun persists one batch run header.
func (s *Store) CreateTaggingRun(ctx context.Context, create *TaggingRun) (*TaggingRun, error) {
	return s.driver.CreateTaggingRun(ctx, create)
}

// ListTaggingRuns lists persisted runs, newest first.
func (s *Store) ListTaggingRuns(ctx context.Context, find *FindTaggingRun) ([]*TaggingRun, error) {
	return s.driver.ListTaggingRuns(ctx, find)
}

// CreateNoteRunResults persists the per-note outcomes of a run.
func (s *Store) CreateNoteRunResults(ctx context.Context, creates []*NoteRunResult) error {
	return s.driver.CreateNoteRunResults(ctx, creates)
}

// ListNoteRunResults lists per-note outcomes.
func (s *Store) ListNoteRunResults(ctx context.Context, find *FindNoteRunResult) ([]*NoteRunResult, error) {
	return s.driver.ListNoteRunResults(ctx, find)
}
