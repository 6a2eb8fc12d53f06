package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// JuryRepo persists jury members.  Ids are opaque strings chosen by the
// application.
type JuryRepo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewJuryRepo(db *sql.DB, log *zap.Logger) *JuryRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &JuryRepo{db: db, log: log}
}

// List returns every jury member.  Rows with an unknown discipline are
// skipped and logged rather than guessed.
func (r *JuryRepo) List(ctx context.Context) ([]model.JuryMember, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, discipline, stage_id FROM jury_members ORDER BY stage_id, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JuryMember
	for rows.Next() {
		var (
			j          model.JuryMember
			id         string
			discipline string
		)
		if err := rows.Scan(&id, &j.Name, &discipline, &j.StageID); err != nil {
			return nil, err
		}
		d, err := model.ParseDiscipline(discipline)
		if err != nil {
			r.log.Warn("skipping jury member with unknown discipline",
				zap.String("jury_member_id", id), zap.String("discipline", discipline))
			continue
		}
		j.ID = model.JuryMemberID(id)
		j.Discipline = d
		out = append(out, j)
	}
	return out, rows.Err()
}

// Create inserts a jury member.
func (r *JuryRepo) Create(ctx context.Context, j model.JuryMember) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO jury_members (id, name, discipline, stage_id) VALUES (?, ?, ?, ?)",
		string(j.ID), j.Name, string(j.Discipline), j.StageID)
	if isDuplicate(err) {
		return roster.ErrDuplicate
	}
	return err
}

// Update writes only the fields set in upd.
func (r *JuryRepo) Update(ctx context.Context, id model.JuryMemberID, upd roster.JuryMemberUpdate) error {
	var (
		sets []string
		args []interface{}
	)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Discipline != nil {
		sets = append(sets, "discipline = ?")
		args = append(args, string(*upd.Discipline))
	}
	if upd.StageID != nil {
		sets = append(sets, "stage_id = ?")
		args = append(args, *upd.StageID)
	}
	if len(sets) == 0 {
		return roster.ErrEmptyUpdate
	}
	args = append(args, string(id))
	q := fmt.Sprintf("UPDATE jury_members SET %s WHERE id = ?", strings.Join(sets, ", "))
	return expectRow(r.db.ExecContext(ctx, q, args...))
}
