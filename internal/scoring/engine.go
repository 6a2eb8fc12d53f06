package scoring

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// DefaultCategoriesPerDiscipline is the catalog size of each discipline.
const DefaultCategoriesPerDiscipline = 6

// Config tunes the aggregation engine.
type Config struct {
	// CategoriesPerDiscipline is the number of records a jury member must
	// have given to a performance before it counts as complete.
	CategoriesPerDiscipline int
}

// Engine derives aggregate views from the ledger and the roster.
type Engine struct {
	ledger  *Ledger
	roster  *roster.Store
	cfg     Config
	log     *zap.Logger
	metrics *Metrics

	lastUnattributed atomic.Int64
}

// NewEngine wires an engine over ledger and rosterStore.
func NewEngine(ledger *Ledger, rosterStore *roster.Store, cfg Config, log *zap.Logger, metrics *Metrics) *Engine {
	if cfg.CategoriesPerDiscipline <= 0 {
		cfg.CategoriesPerDiscipline = DefaultCategoriesPerDiscipline
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{ledger: ledger, roster: rosterStore, cfg: cfg, log: log, metrics: metrics}
}

// Ready reports whether both the ledger and the roster have been loaded.
func (e *Engine) Ready() bool {
	_, rosterOK := e.roster.Current()
	return rosterOK && e.ledger.Loaded()
}

type performanceKey struct {
	bandID  int
	stageID int
}

// View is a consistent read of one ledger snapshot against one roster
// snapshot.  All queries on a View are pure.
type View struct {
	roster  *roster.Snapshot
	scores  []model.Score
	byPerf  map[performanceKey][]model.Score
	cfg     Config
	metrics *Metrics

	unattributed int
}

// View captures the current ledger and roster snapshots.  It returns
// ErrNotReady until both have been loaded.
func (e *Engine) View() (*View, error) {
	ledgerSnap, ok := e.ledger.Snapshot()
	if !ok {
		return nil, ErrNotReady
	}
	rosterSnap, ok := e.roster.Current()
	if !ok {
		return nil, ErrNotReady
	}
	v := &View{
		roster:  rosterSnap,
		scores:  ledgerSnap.Scores(),
		byPerf:  make(map[performanceKey][]model.Score),
		cfg:     e.cfg,
		metrics: e.metrics,
	}
	for _, sc := range v.scores {
		k := performanceKey{sc.BandID, sc.StageID}
		v.byPerf[k] = append(v.byPerf[k], sc)
		if _, known := rosterSnap.JuryMember(sc.JuryMemberID); !known {
			v.unattributed++
		}
	}
	if prev := e.lastUnattributed.Swap(int64(v.unattributed)); prev != int64(v.unattributed) {
		e.metrics.unattributedScores(v.unattributed)
		if v.unattributed > 0 {
			e.log.Warn("scores reference jury members missing from the roster",
				zap.Int("records", v.unattributed),
				zap.NamedError("reason", ErrUnknownIdentity))
		}
	}
	return v, nil
}

// Roster returns the roster snapshot the view was built on.
func (v *View) Roster() *roster.Snapshot { return v.roster }

// Unattributed returns the number of ledger records whose jury member is
// not part of the roster.
func (v *View) Unattributed() int { return v.unattributed }

// PerformanceScore aggregates every record of one band at one stage.  The
// second result is false when nothing has been recorded yet, which is
// distinct from a performance judged with zeros.
func (v *View) PerformanceScore(bandID, stageID int) (*model.PerformanceScore, bool) {
	records := v.byPerf[performanceKey{bandID, stageID}]
	if len(records) == 0 {
		return nil, false
	}
	ps := &model.PerformanceScore{
		BandID:  bandID,
		StageID: stageID,
		Scores:  make(map[model.Discipline]map[int]int, len(model.Disciplines)),
	}
	for _, d := range model.Disciplines {
		ps.Scores[d] = make(map[int]int)
	}
	for _, sc := range records {
		d, ok := v.roster.DisciplineOf(sc.JuryMemberID)
		if !ok {
			ps.Unattributed++
			continue
		}
		ps.Scores[d][sc.CategoryID] += sc.Value
		switch d {
		case model.Musicality:
			ps.TotalMusicality += sc.Value
		case model.Show:
			ps.TotalShow += sc.Value
		}
	}
	ps.GrandTotal = ps.TotalMusicality + ps.TotalShow
	return ps, true
}

// IsPerformanceComplete reports whether juryID has scored at least the
// configured number of categories for the performance.  Jury members
// missing from the roster are never complete.
func (v *View) IsPerformanceComplete(bandID, stageID int, juryID model.JuryMemberID) bool {
	if _, known := v.roster.JuryMember(juryID); !known {
		return false
	}
	n := 0
	for _, sc := range v.byPerf[performanceKey{bandID, stageID}] {
		if sc.JuryMemberID == juryID {
			n++
		}
	}
	return n >= v.cfg.CategoriesPerDiscipline
}

// BandScoreByStage projects PerformanceScore onto its discipline totals.
func (v *View) BandScoreByStage(bandID, stageID int) (model.StageScore, bool) {
	ps, ok := v.PerformanceScore(bandID, stageID)
	if !ok {
		return model.StageScore{}, false
	}
	return model.StageScore{Musicality: ps.TotalMusicality, Show: ps.TotalShow, Total: ps.GrandTotal}, true
}

// BandTotalScores returns one entry per roster band with a stage entry for
// every stage, unjudged stages as explicit zeros.  The list is ordered by
// total descending, then band id ascending.
func (v *View) BandTotalScores() []model.BandTotalScore {
	defer v.metrics.observe("band_totals", time.Now())

	out := make([]model.BandTotalScore, 0, len(v.roster.Bands))
	for _, b := range v.roster.Bands {
		bt := model.BandTotalScore{
			BandID:      b.ID,
			BandName:    b.Name,
			StageScores: make(map[int]model.StageScore, len(v.roster.Stages)),
		}
		for _, st := range v.roster.Stages {
			ss, _ := v.BandScoreByStage(b.ID, st.ID)
			bt.StageScores[st.ID] = ss
			bt.TotalMusicality += ss.Musicality
			bt.TotalShow += ss.Show
		}
		bt.TotalScore = bt.TotalMusicality + bt.TotalShow
		out = append(out, bt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].BandID < out[j].BandID
	})
	return out
}

// PerformanceScore is View().PerformanceScore on the current snapshots.
func (e *Engine) PerformanceScore(bandID, stageID int) (*model.PerformanceScore, bool, error) {
	v, err := e.View()
	if err != nil {
		return nil, false, err
	}
	ps, ok := v.PerformanceScore(bandID, stageID)
	return ps, ok, nil
}

// IsPerformanceComplete is View().IsPerformanceComplete on the current
// snapshots.
func (e *Engine) IsPerformanceComplete(bandID, stageID int, juryID model.JuryMemberID) (bool, error) {
	v, err := e.View()
	if err != nil {
		return false, err
	}
	return v.IsPerformanceComplete(bandID, stageID, juryID), nil
}

// BandTotalScores is View().BandTotalScores on the current snapshots.
func (e *Engine) BandTotalScores() ([]model.BandTotalScore, error) {
	v, err := e.View()
	if err != nil {
		return nil, err
	}
	return v.BandTotalScores(), nil
}

// BandScoreByStage is View().BandScoreByStage on the current snapshots.
func (e *Engine) BandScoreByStage(bandID, stageID int) (model.StageScore, bool, error) {
	v, err := e.View()
	if err != nil {
		return model.StageScore{}, false, err
	}
	ss, ok := v.BandScoreByStage(bandID, stageID)
	return ss, ok, nil
}
