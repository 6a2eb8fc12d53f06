package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// CategoryRepo reads the fixed scoring catalog.
type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns every category ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, discipline FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var (
			c          model.Category
			discipline string
		)
		if err := rows.Scan(&c.ID, &c.Name, &discipline); err != nil {
			return nil, err
		}
		d, err := model.ParseDiscipline(discipline)
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", c.ID, err)
		}
		c.Discipline = d
		out = append(out, c)
	}
	return out, rows.Err()
}
