package scoring

import (
	"sort"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// RankedBand is a band total with its 1-based position in the ranking.
type RankedBand struct {
	Rank int `json:"rank"`
	model.BandTotalScore
}

// FormsProgress counts the jury forms received for a band.  A form is
// counted once per jury member that recorded at least one score for it.
type FormsProgress struct {
	BandID    int  `json:"band_id"`
	Submitted int  `json:"submitted"`
	Expected  int  `json:"expected"`
	Complete  bool `json:"complete"`
}

// JuryProgress lists the bands a jury member has fully scored at their stage.
type JuryProgress struct {
	JuryMemberID model.JuryMemberID `json:"jury_member_id"`
	ScoredBands  []int              `json:"scored_bands"`
	TotalBands   int                `json:"total_bands"`
	Complete     bool               `json:"complete"`
}

// CompletionStatus summarizes whether every band received every jury form.
type CompletionStatus struct {
	Complete        bool `json:"complete"`
	IncompleteBands int  `json:"incomplete_bands"`
}

// Leaders holds the bands with the highest discipline totals.  A list is
// empty while its maximum is zero.
type Leaders struct {
	Musicality []int `json:"musicality"`
	Show       []int `json:"show"`
}

// Ranking returns the ordered band totals with their ranks.  A positive
// limit keeps only the first limit entries.
func (v *View) Ranking(limit int) []RankedBand {
	totals := v.BandTotalScores()
	if limit > 0 && limit < len(totals) {
		totals = totals[:limit]
	}
	out := make([]RankedBand, len(totals))
	for i, bt := range totals {
		out[i] = RankedBand{Rank: i + 1, BandTotalScore: bt}
	}
	return out
}

// ScoredBands returns, ordered by id, the roster bands the jury member has
// completely scored at their own stage.  Unknown jury members have none.
func (v *View) ScoredBands(juryID model.JuryMemberID) []int {
	j, ok := v.roster.JuryMember(juryID)
	if !ok {
		return nil
	}
	var out []int
	for _, b := range v.roster.Bands {
		if v.IsPerformanceComplete(b.ID, j.StageID, juryID) {
			out = append(out, b.ID)
		}
	}
	return out
}

// JuryProgress reports ScoredBands against the number of roster bands.
func (v *View) JuryProgress(juryID model.JuryMemberID) (JuryProgress, bool) {
	if _, ok := v.roster.JuryMember(juryID); !ok {
		return JuryProgress{}, false
	}
	scored := v.ScoredBands(juryID)
	if scored == nil {
		scored = []int{}
	}
	total := len(v.roster.Bands)
	return JuryProgress{
		JuryMemberID: juryID,
		ScoredBands:  scored,
		TotalBands:   total,
		Complete:     total > 0 && len(scored) == total,
	}, true
}

// FormsProgress counts the distinct roster jury members that scored the
// band, at any stage, against the size of the jury.
func (v *View) FormsProgress(bandID int) FormsProgress {
	seen := make(map[model.JuryMemberID]struct{})
	for _, sc := range v.scores {
		if sc.BandID != bandID {
			continue
		}
		if _, known := v.roster.JuryMember(sc.JuryMemberID); known {
			seen[sc.JuryMemberID] = struct{}{}
		}
	}
	expected := len(v.roster.JuryMembers)
	return FormsProgress{
		BandID:    bandID,
		Submitted: len(seen),
		Expected:  expected,
		Complete:  len(seen) >= expected,
	}
}

// Completion reports whether every roster band received a form from every
// jury member.  An empty band roster is never complete.
func (v *View) Completion() CompletionStatus {
	if len(v.roster.Bands) == 0 {
		return CompletionStatus{}
	}
	st := CompletionStatus{Complete: true}
	for _, b := range v.roster.Bands {
		if !v.FormsProgress(b.ID).Complete {
			st.Complete = false
			st.IncompleteBands++
		}
	}
	return st
}

// CategoryLeaders returns the bands holding the highest musicality total and
// the highest show total across all stages.
func (v *View) CategoryLeaders() Leaders {
	return leadersOf(v.BandTotalScores())
}

func leadersOf(totals []model.BandTotalScore) Leaders {
	var maxMus, maxShow int
	for _, bt := range totals {
		if bt.TotalMusicality > maxMus {
			maxMus = bt.TotalMusicality
		}
		if bt.TotalShow > maxShow {
			maxShow = bt.TotalShow
		}
	}
	l := Leaders{Musicality: []int{}, Show: []int{}}
	for _, bt := range totals {
		if maxMus > 0 && bt.TotalMusicality == maxMus {
			l.Musicality = append(l.Musicality, bt.BandID)
		}
		if maxShow > 0 && bt.TotalShow == maxShow {
			l.Show = append(l.Show, bt.BandID)
		}
	}
	sort.Ints(l.Musicality)
	sort.Ints(l.Show)
	return l
}

// Ranking is View().Ranking on the current snapshots.
func (e *Engine) Ranking(limit int) ([]RankedBand, error) {
	v, err := e.View()
	if err != nil {
		return nil, err
	}
	return v.Ranking(limit), nil
}
