package store

import (
	"context"
	"time"

	"github.com/tagwise/tagwise/ai/tagging"
)

// TaggingRun is one persisted batch run header.
type TaggingRun struct {
	ID         string
	Provider   string
	Model      string
	Processed  int32
	Failed     int32
	DurationMs int64
	CreatedTs  int64
}

// FindTaggingRun is the find condition for tagging runs.
type FindTaggingRun struct {
	ID    *string
	Limit *int
}

// NoteRunResult is one persisted per-note outcome within a run.
type NoteRunResult struct {
	ID        int32
	RunID     string
	Path      string
	State     string
	Strategy  string
	TagsAdded int32
	Error     string
	CreatedTs int64
}

// FindNoteRunResult is the find condition for per-note outcomes.
type FindNoteRunResult struct {
	RunID *string
}

// RecordRun persists a batch report: the run header plus one row per note.
// It implements tagging.Recorder.
func (s *Store) RecordRun(ctx context.Context, report *tagging.BatchReport) error {
	run := &TaggingRun{
		ID:         report.RunID,
		Provider:   report.Provider,
		Model:      report.Model,
		Processed:  int32(report.Processed),
		Failed:     int32(report.Failed),
		DurationMs: report.Duration.Milliseconds(),
		CreatedTs:  report.StartedAt.Unix(),
	}
	if _, err := s.driver.CreateTaggingRun(ctx, run); err != nil {
		return err
	}

	results := make([]*NoteRunResult, 0, len(report.Results))
	now := time.Now().Unix()
	for _, r := range report.Results {
		row := &NoteRunResult{
			RunID:     report.RunID,
			Path:      r.Path,
			State:     string(r.State),
			Strategy:  r.Strategy,
			TagsAdded: int32(len(r.Added)),
			CreatedTs: now,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		results = append(results, row)
	}
	return s.driver.CreateNoteRunResults(ctx, results)
}
