package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/tagwise/tagwise/store"
)

func (d *DB) CreateTaggingRun(ctx context.Context, create *store.TaggingRun) (*store.TaggingRun, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	stmt := `
		INSERT INTO tagging_run (id, provider, model, processed, failed, duration_ms, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Provider,
		create.Model,
		create.Processed,
		create.Failed,
		create.DurationMs,
		create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create tagging run")
	}
	return create, nil
}

func (d *DB) ListTaggingRuns(ctx context.Context, find *store.FindTaggingRun) ([]*store.TaggingRun, error) {
	query := `SELECT id, provider, model, processed, failed, duration_ms, created_ts
		FROM tagging_run`
	args := []any{}
	if find.ID != nil {
		query += " WHERE id = $1"
		args = append(args, *find.ID)
	}
	query += " ORDER BY created_ts DESC"
	if find.Limit != nil {
		query += " LIMIT " + strconv.Itoa(*find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tagging runs")
	}
	defer rows.Close()

	var runs []*store.TaggingRun
	for rows.Next() {
		var run store.TaggingRun
		if err := rows.Scan(
			&run.ID,
			&run.Provider,
			&run.Model,
			&run.Processed,
			&run.Failed,
			&run.DurationMs,
			&run.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan tagging run")
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (d *DB) CreateNoteRunResults(ctx context.Context, creates []*store.NoteRunResult) error {
	if len(creates) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO note_run_result (run_id, path, state, strategy, tags_added, error, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, create := range creates {
		if create.CreatedTs == 0 {
			create.CreatedTs = time.Now().Unix()
		}
		if _, err := stmt.ExecContext(ctx,
			create.RunID,
			create.Path,
			create.State,
			create.Strategy,
			create.TagsAdded,
			create.Error,
			create.CreatedTs,
		); err != nil {
			return errors.Wrap(err, "failed to create note run result")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (d *DB) ListNoteRunResults(ctx context.Context, find *store.FindNoteRunResult) ([]*store.NoteRunResult, error) {
	query := `SELECT id, run_id, path, state, strategy, tags_added, error, created_ts
		FROM note_run_result`
	args := []any{}
	if find.RunID != nil {
		query += " WHERE run_id = $1"
		args = append(args, *find.RunID)
	}
	query += " ORDER BY id ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list note run results")
	}
	defer rows.Close()

	var results []*store.NoteRunResult
	for rows.Next() {
		var r store.NoteRunResult
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.Path,
			&r.State,
			&r.Strategy,
			&r.TagsAdded,
			&r.Error,
			&r.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan note run result")
		}
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
