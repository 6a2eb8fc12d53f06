package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// StageRepo reads and renames festival stages.  Stages are seeded by the
// initial migration and never created at runtime.
type StageRepo struct{ db *sql.DB }

func NewStageRepo(db *sql.DB) *StageRepo { return &StageRepo{db: db} }

// List returns every stage ordered by id.
func (r *StageRepo) List(ctx context.Context) ([]model.Stage, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM stages ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Stage
	for rows.Next() {
		var s model.Stage
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateName renames a stage.  roster.ErrNotFound is returned when the id
// does not exist.
func (r *StageRepo) UpdateName(ctx context.Context, id int, name string) error {
	return expectRow(r.db.ExecContext(ctx, "UPDATE stages SET name = ? WHERE id = ?", name, id))
}

// expectRow turns an update that matched nothing into roster.ErrNotFound.
// The DSN sets clientFoundRows, so an update that leaves the row unchanged
// still counts as one.
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}
