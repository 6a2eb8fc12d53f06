package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// Errors returned by Service and by Writer implementations.
var (
	ErrNotReady     = errors.New("roster not loaded yet")
	ErrNotFound     = errors.New("roster entry not found")
	ErrDuplicate    = errors.New("roster entry already exists")
	ErrInvalidName  = errors.New("name is required")
	ErrInvalidID    = errors.New("id must be positive")
	ErrUnknownStage = errors.New("unknown stage")
	ErrEmptyUpdate  = errors.New("nothing to update")
)

// JuryMemberUpdate is a partial update of a jury member.  Nil fields are left
// untouched; the id is never part of an update.
type JuryMemberUpdate struct {
	Name       *string
	Discipline *model.Discipline
	StageID    *int
}

// Writer persists roster changes.  Updates must touch only the given fields.
type Writer interface {
	CreateBand(ctx context.Context, b model.Band) error
	UpdateBandName(ctx context.Context, id int, name string) error
	CreateJuryMember(ctx context.Context, j model.JuryMember) error
	UpdateJuryMember(ctx context.Context, id model.JuryMemberID, upd JuryMemberUpdate) error
	UpdateStageName(ctx context.Context, id int, name string) error
}

// Publisher tells other processes that a roster collection changed.
type Publisher interface {
	PublishRosterChanged(ctx context.Context, collection string) error
}

// Reloader schedules a local roster reload.
type Reloader interface {
	Notify()
}

// Service applies administrative roster changes.  Every successful write
// triggers a local reload and a best-effort broadcast.
type Service struct {
	writer    Writer
	store     *Store
	reloader  Reloader
	publisher Publisher
	newID     func() string
	log       *zap.Logger
}

// NewService wires a roster service.  publisher may be nil when running
// without a message broker.
func NewService(w Writer, store *Store, reloader Reloader, publisher Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		writer:    w,
		store:     store,
		reloader:  reloader,
		publisher: publisher,
		newID:     uuid.NewString,
		log:       log,
	}
}

// AddBand registers a band under an organizer-assigned id.
func (s *Service) AddBand(ctx context.Context, id int, name string) (model.Band, error) {
	name = strings.TrimSpace(name)
	if id <= 0 {
		return model.Band{}, ErrInvalidID
	}
	if name == "" {
		return model.Band{}, ErrInvalidName
	}
	b := model.Band{ID: id, Name: name}
	if err := s.writer.CreateBand(ctx, b); err != nil {
		return model.Band{}, fmt.Errorf("create band %d: %w", id, err)
	}
	s.changed(ctx, "bands")
	return b, nil
}

// RenameBand changes the name of a band.  Scores stay attributed to it
// because they reference the id only.
func (s *Service) RenameBand(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if err := s.writer.UpdateBandName(ctx, id, name); err != nil {
		return fmt.Errorf("rename band %d: %w", id, err)
	}
	s.changed(ctx, "bands")
	return nil
}

// AddJuryMember registers a jury member with a fresh opaque id.
func (s *Service) AddJuryMember(ctx context.Context, name string, d model.Discipline, stageID int) (model.JuryMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.JuryMember{}, ErrInvalidName
	}
	if !d.Valid() {
		return model.JuryMember{}, model.ErrUnknownDiscipline
	}
	if err := s.checkStage(stageID); err != nil {
		return model.JuryMember{}, err
	}
	j := model.JuryMember{ID: model.JuryMemberID(s.newID()), Name: name, Discipline: d, StageID: stageID}
	if err := s.writer.CreateJuryMember(ctx, j); err != nil {
		return model.JuryMember{}, fmt.Errorf("create jury member: %w", err)
	}
	s.changed(ctx, "jury_members")
	return j, nil
}

// UpdateJuryMember applies a partial update to a jury member.
func (s *Service) UpdateJuryMember(ctx context.Context, id model.JuryMemberID, upd JuryMemberUpdate) error {
	if upd.Name == nil && upd.Discipline == nil && upd.StageID == nil {
		return ErrEmptyUpdate
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return ErrInvalidName
		}
		upd.Name = &name
	}
	if upd.Discipline != nil && !upd.Discipline.Valid() {
		return model.ErrUnknownDiscipline
	}
	if upd.StageID != nil {
		if err := s.checkStage(*upd.StageID); err != nil {
			return err
		}
	}
	if err := s.writer.UpdateJuryMember(ctx, id, upd); err != nil {
		return fmt.Errorf("update jury member %s: %w", id, err)
	}
	s.changed(ctx, "jury_members")
	return nil
}

// RenameStage changes the display name of a stage.
func (s *Service) RenameStage(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if err := s.writer.UpdateStageName(ctx, id, name); err != nil {
		return fmt.Errorf("rename stage %d: %w", id, err)
	}
	s.changed(ctx, "stages")
	return nil
}

func (s *Service) checkStage(id int) error {
	snap, ok := s.store.Current()
	if !ok {
		return ErrNotReady
	}
	if _, ok := snap.Stage(id); !ok {
		return ErrUnknownStage
	}
	return nil
}

func (s *Service) changed(ctx context.Context, collection string) {
	if s.reloader != nil {
		s.reloader.Notify()
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRosterChanged(ctx, collection); err != nil {
		s.log.Warn("roster change broadcast failed", zap.String("collection", collection), zap.Error(err))
	}
}
