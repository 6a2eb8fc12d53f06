package roster

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// Store keeps the most recent roster snapshot observed by this process.
// Until the first snapshot arrives the roster is unknown and Current
// reports false.
type Store struct {
	current                 atomic.Pointer[Snapshot]
	categoriesPerDiscipline int
	log                     *zap.Logger
}

// NewStore returns an empty store.  categoriesPerDiscipline is the catalog
// size each discipline is expected to have; applied snapshots that deviate
// are logged.
func NewStore(categoriesPerDiscipline int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{categoriesPerDiscipline: categoriesPerDiscipline, log: log}
}

// Current returns the latest snapshot and whether one has been applied.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Apply replaces the current snapshot.
func (s *Store) Apply(snap *Snapshot) {
	if snap == nil {
		return
	}
	for _, d := range model.Disciplines {
		if n := len(snap.CategoriesFor(d)); s.categoriesPerDiscipline > 0 && n != s.categoriesPerDiscipline {
			s.log.Warn("category catalog size differs from configuration",
				zap.String("discipline", string(d)),
				zap.Int("categories", n),
				zap.Int("expected", s.categoriesPerDiscipline))
		}
	}
	s.current.Store(snap)
	s.log.Debug("roster snapshot applied",
		zap.Int("stages", len(snap.Stages)),
		zap.Int("bands", len(snap.Bands)),
		zap.Int("jury_members", len(snap.JuryMembers)),
		zap.Int("categories", len(snap.Categories)))
}

// Follow applies every snapshot received on updates until the channel is
// closed or ctx is done.
func (s *Store) Follow(ctx context.Context, updates <-chan *Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			s.Apply(snap)
		}
	}
}
