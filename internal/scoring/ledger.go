// Package scoring implements the score ledger and the aggregation engine
// that turns individual category scores into performance totals, band
// totals, rankings and completeness indicators.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// Document is one score addressed by its stable document key.
type Document struct {
	Key   string
	Score model.Score
}

// Store is the persistence collaborator behind the ledger.
type Store interface {
	// QueryAll returns every stored score.
	QueryAll(ctx context.Context) ([]model.Score, error)
	// BatchWrite upserts all documents by key, or none of them.
	BatchWrite(ctx context.Context, docs []Document) error
}

// LedgerSnapshot is an immutable view of the ledger at one point in time.
type LedgerSnapshot struct {
	records map[model.ScoreKey]model.Score
}

// Len returns the number of live records.
func (s *LedgerSnapshot) Len() int { return len(s.records) }

// Get returns the record stored under key.
func (s *LedgerSnapshot) Get(key model.ScoreKey) (model.Score, bool) {
	sc, ok := s.records[key]
	return sc, ok
}

// Scores returns all records ordered by band, stage, jury member, category.
func (s *LedgerSnapshot) Scores() []model.Score {
	out := make([]model.Score, 0, len(s.records))
	for _, sc := range s.records {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key(), out[j].Key()) })
	return out
}

func lessKey(a, b model.ScoreKey) bool {
	if a.BandID != b.BandID {
		return a.BandID < b.BandID
	}
	if a.StageID != b.StageID {
		return a.StageID < b.StageID
	}
	if a.JuryMemberID != b.JuryMemberID {
		return a.JuryMemberID < b.JuryMemberID
	}
	return a.CategoryID < b.CategoryID
}

// Ledger is the deduplicated, write-through record of every score.  Readers
// always see a complete snapshot; a submission becomes visible only after
// the store acknowledged it.
type Ledger struct {
	store   Store
	log     *zap.Logger
	metrics *Metrics

	// writers is held shared by submissions and exclusively by reloads, so
	// a reloaded snapshot always includes every acknowledged local write.
	writers sync.RWMutex
	// apply serializes snapshot swaps.  Submissions hold it from the store
	// write through the swap, so local apply order equals commit order.
	apply sync.Mutex
	snap  atomic.Pointer[LedgerSnapshot]
}

// NewLedger returns a ledger that has not been loaded yet.
func NewLedger(store Store, log *zap.Logger, metrics *Metrics) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, log: log, metrics: metrics}
}

// Snapshot returns the current snapshot and whether the ledger was loaded.
func (l *Ledger) Snapshot() (*LedgerSnapshot, bool) {
	s := l.snap.Load()
	return s, s != nil
}

// Loaded reports whether the initial load has completed.
func (l *Ledger) Loaded() bool { return l.snap.Load() != nil }

// LoadAll reads every score from the store and makes it the current
// snapshot.  Records sharing an identity key are collapsed, the later one
// in store order wins.
func (l *Ledger) LoadAll(ctx context.Context) ([]model.Score, error) {
	snap, err := l.reload(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Scores(), nil
}

// Refresh replaces the snapshot with the store's current content.  It is
// called when another process reports new scores.
func (l *Ledger) Refresh(ctx context.Context) error {
	_, err := l.reload(ctx)
	return err
}

func (l *Ledger) reload(ctx context.Context) (*LedgerSnapshot, error) {
	l.writers.Lock()
	defer l.writers.Unlock()

	scores, err := l.store.QueryAll(ctx)
	if err != nil {
		l.log.Error("loading scores failed", zap.Error(err))
		return nil, fmt.Errorf("%w: load scores: %v", ErrPersistenceUnavailable, err)
	}
	records := make(map[model.ScoreKey]model.Score, len(scores))
	for _, sc := range scores {
		records[sc.Key()] = sc
	}
	snap := &LedgerSnapshot{records: records}

	l.apply.Lock()
	l.snap.Store(snap)
	l.apply.Unlock()

	l.metrics.records(len(records))
	l.log.Info("score ledger loaded", zap.Int("records", len(records)), zap.Int("rows", len(scores)))
	return snap, nil
}

// SubmitBatch durably stores the scores of one (band, stage, jury member)
// submission, overwriting earlier values with the same identity key.
// Either every record is persisted and becomes visible, or none is.
func (l *Ledger) SubmitBatch(ctx context.Context, scores []model.Score) error {
	if !l.Loaded() {
		return ErrNotReady
	}
	docs, err := documents(scores)
	if err != nil {
		l.metrics.submission("invalid")
		return err
	}

	l.writers.RLock()
	defer l.writers.RUnlock()
	l.apply.Lock()

	if err := l.store.BatchWrite(ctx, docs); err != nil {
		l.apply.Unlock()
		l.metrics.submission("failed")
		l.log.Warn("score batch write failed",
			zap.Int("band_id", scores[0].BandID),
			zap.Int("stage_id", scores[0].StageID),
			zap.String("jury_member_id", string(scores[0].JuryMemberID)),
			zap.Error(err))
		return fmt.Errorf("%w: write %d scores: %v", ErrPersistenceUnavailable, len(docs), err)
	}

	prev := l.snap.Load()
	records := make(map[model.ScoreKey]model.Score, prev.Len()+len(scores))
	for k, v := range prev.records {
		records[k] = v
	}
	for _, d := range docs {
		records[d.Score.Key()] = d.Score
	}
	l.snap.Store(&LedgerSnapshot{records: records})
	l.apply.Unlock()

	l.metrics.submission("ok")
	l.metrics.records(len(records))
	l.log.Info("score batch stored",
		zap.Int("band_id", scores[0].BandID),
		zap.Int("stage_id", scores[0].StageID),
		zap.String("jury_member_id", string(scores[0].JuryMemberID)),
		zap.Int("scores", len(docs)))
	return nil
}

// documents validates a batch and builds its store documents.
func documents(scores []model.Score) ([]Document, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no scores", ErrInvalidBatch)
	}
	first := scores[0]
	if first.JuryMemberID == "" {
		return nil, fmt.Errorf("%w: missing jury member", ErrInvalidBatch)
	}
	seen := make(map[int]struct{}, len(scores))
	docs := make([]Document, 0, len(scores))
	for _, sc := range scores {
		if sc.BandID != first.BandID || sc.StageID != first.StageID || sc.JuryMemberID != first.JuryMemberID {
			return nil, fmt.Errorf("%w: scores for more than one performance or jury member", ErrInvalidBatch)
		}
		if _, dup := seen[sc.CategoryID]; dup {
			return nil, fmt.Errorf("%w: category %d repeated", ErrInvalidBatch, sc.CategoryID)
		}
		seen[sc.CategoryID] = struct{}{}
		docs = append(docs, Document{Key: sc.Key().String(), Score: sc})
	}
	return docs, nil
}
