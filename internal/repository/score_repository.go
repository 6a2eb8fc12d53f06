package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

// ScoreRepo is the durable backing of the score ledger.
type ScoreRepo struct{ db *sql.DB }

func NewScoreRepo(db *sql.DB) *ScoreRepo { return &ScoreRepo{db: db} }

var _ scoring.Store = (*ScoreRepo)(nil)

// QueryAll returns every score in insertion order.
func (r *ScoreRepo) QueryAll(ctx context.Context) ([]model.Score, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT band_id, stage_id, jury_member_id, category_id, value, submitted_at
		   FROM scores ORDER BY submitted_at, doc_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Score
	for rows.Next() {
		var (
			s    model.Score
			jury string
		)
		if err := rows.Scan(&s.BandID, &s.StageID, &jury, &s.CategoryID, &s.Value, &s.Timestamp); err != nil {
			return nil, err
		}
		s.JuryMemberID = model.JuryMemberID(jury)
		out = append(out, s)
	}
	return out, rows.Err()
}

// BatchWrite upserts every document in one transaction.  Either all rows
// are committed or the transaction is rolled back.
func (r *ScoreRepo) BatchWrite(ctx context.Context, docs []scoring.Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO scores (doc_key, band_id, stage_id, jury_member_id, category_id, value, submitted_at) VALUES `
	args := make([]interface{}, 0, len(docs)*7)
	for i, d := range docs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		ts := d.Score.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		args = append(args, d.Key, d.Score.BandID, d.Score.StageID, string(d.Score.JuryMemberID),
			d.Score.CategoryID, d.Score.Value, ts)
	}
	query += " ON DUPLICATE KEY UPDATE value = VALUES(value), submitted_at = VALUES(submitted_at)"

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}
