package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// minPrefix is the shortest id prefix Find looks up.
const minPrefix = 4

// Run is a recorded batch run.
type Run struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	API       string `db:"api"`
	Model     string `db:"model"`
	Rows      int    `db:"row_count"`
	Progress  string `db:"progress"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

// Time returns when the run started.
func (r Run) Time() time.Time {
	return time.Unix(0, r.CreatedAt)
}

// SaveRun inserts the run, or updates its title, row count, progress and
// status.
func (d *DB) SaveRun(ctx context.Context, run Run) error {
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	if _, err := d.db.NamedExecContext(ctx, `
		insert into runs (id, title, api, model, row_count, progress, status, created_at)
		values (:id, :title, :api, :model, :row_count, :progress, :status, :created_at)
		on conflict(id) do update
		set title = excluded.title,
			row_count = excluded.row_count,
			progress = excluded.progress,
			status = excluded.status
	`, run); err != nil {
		return fmt.Errorf("could not save run: %w", err)
	}
	return nil
}

// DeleteRun deletes the run with the given id. Unknown ids are ignored.
func (d *DB) DeleteRun(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `delete from runs where id = ?`, id); err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}
	return nil
}

// FindRun finds a run by id prefix or by its exact title.
func (d *DB) FindRun(ctx context.Context, in string) (*Run, error) {
	var runs []Run
	var err error
	if len(in) < minPrefix {
		err = d.db.SelectContext(ctx, &runs, `select * from runs where title = ?`, in)
	} else {
		err = d.db.SelectContext(ctx, &runs, `select * from runs where id like ? or title = ?`, in+"%", in)
	}
	if err != nil {
		return nil, fmt.Errorf("could not find run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, ErrNoMatches
	case 1:
		return &runs[0], nil
	default:
		ids := make([]string, 0, len(runs))
		for _, r := range runs {
			ids = append(ids, r.ID)
		}
		return nil, fmt.Errorf("%w: %s", ErrManyMatches, strings.Join(ids, ", "))
	}
}

// LatestRun returns the most recent run.
func (d *DB) LatestRun(ctx context.Context) (*Run, error) {
	var runs []Run
	if err := d.db.SelectContext(ctx, &runs, `select * from runs order by created_at desc limit 1`); err != nil {
		return nil, fmt.Errorf("could not find last run: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrNoMatches
	}
	return &runs[0], nil
}

// ListRuns lists all runs, newest first.
func (d *DB) ListRuns(ctx context.Context) ([]Run, error) {
	var runs []Run
	if err := d.db.SelectContext(ctx, &runs, `select * from runs order by created_at desc`); err != nil {
		return runs, fmt.Errorf("could not list runs: %w", err)
	}
	return runs, nil
}

// ListRunsOlderThan lists runs started before now minus d, newest first.
func (d *DB) ListRunsOlderThan(ctx context.Context, age time.Duration) ([]Run, error) {
	var runs []Run
	if err := d.db.SelectContext(ctx, &runs, `
		select * from runs
		where created_at < ?
		order by created_at desc
	`, time.Now().Add(-age).UnixNano()); err != nil {
		return runs, fmt.Errorf("could not list runs: %w", err)
	}
	return runs, nil
}
