package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// BandRepo persists competing bands.  Band ids are assigned by the
// organizers, not by the database.
type BandRepo struct{ db *sql.DB }

func NewBandRepo(db *sql.DB) *BandRepo { return &BandRepo{db: db} }

// List returns every band ordered by id.
func (r *BandRepo) List(ctx context.Context) ([]model.Band, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM bands ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Band
	for rows.Next() {
		var b model.Band
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create inserts a band.  roster.ErrDuplicate is returned when the id is
// taken.
func (r *BandRepo) Create(ctx context.Context, b model.Band) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO bands (id, name) VALUES (?, ?)", b.ID, b.Name)
	if isDuplicate(err) {
		return roster.ErrDuplicate
	}
	return err
}

// UpdateName renames a band.  Only the name column is touched.
func (r *BandRepo) UpdateName(ctx context.Context, id int, name string) error {
	return expectRow(r.db.ExecContext(ctx, "UPDATE bands SET name = ? WHERE id = ?", name, id))
}
