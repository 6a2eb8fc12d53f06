package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// RosterRepo combines the roster tables.  It is the roster.Source the feed
// reloads from and the roster.Writer administrative changes go through.
type RosterRepo struct {
	Stages     *StageRepo
	Bands      *BandRepo
	Jury       *JuryRepo
	Categories *CategoryRepo
}

func NewRosterRepo(db *sql.DB, log *zap.Logger) *RosterRepo {
	return &RosterRepo{
		Stages:     NewStageRepo(db),
		Bands:      NewBandRepo(db),
		Jury:       NewJuryRepo(db, log),
		Categories: NewCategoryRepo(db),
	}
}

var (
	_ roster.Source = (*RosterRepo)(nil)
	_ roster.Writer = (*RosterRepo)(nil)
)

// LoadRoster reads all four collections into a fresh snapshot.
func (r *RosterRepo) LoadRoster(ctx context.Context) (*roster.Snapshot, error) {
	stages, err := r.Stages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}
	bands, err := r.Bands.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bands: %w", err)
	}
	jury, err := r.Jury.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load jury members: %w", err)
	}
	categories, err := r.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return roster.NewSnapshot(stages, bands, jury, categories), nil
}

func (r *RosterRepo) CreateBand(ctx context.Context, b model.Band) error {
	return r.Bands.Create(ctx, b)
}

func (r *RosterRepo) UpdateBandName(ctx context.Context, id int, name string) error {
	return r.Bands.UpdateName(ctx, id, name)
}

func (r *RosterRepo) CreateJuryMember(ctx context.Context, j model.JuryMember) error {
	return r.Jury.Create(ctx, j)
}

func (r *RosterRepo) UpdateJuryMember(ctx context.Context, id model.JuryMemberID, upd roster.JuryMemberUpdate) error {
	return r.Jury.Update(ctx, id, upd)
}

func (r *RosterRepo) UpdateStageName(ctx context.Context, id int, name string) error {
	return r.Stages.UpdateName(ctx, id, name)
}
