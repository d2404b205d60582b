package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for database access.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	CreateTaggingRun(ctx context.Context, create *TaggingRun) (*TaggingRun, error)
	ListTaggingRuns(ctx context.Context, find *FindTaggingRun) ([]*TaggingRun, error)

	CreateNoteRunResults(ctx context.Context, creates []*NoteRunResult) error
	ListNoteRunResults(ctx context.Context, find *FindNoteRunResult) ([]*NoteRunResult, error)
}
