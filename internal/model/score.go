package model

import (
	"fmt"
	"time"
)

// Score is a single category value given by one jury member to one
// performance.  At most one live Score exists per ScoreKey.
type Score struct {
	BandID       int          `json:"band_id"`
	StageID      int          `json:"stage_id"`
	JuryMemberID JuryMemberID `json:"jury_member_id"`
	CategoryID   int          `json:"category_id"`
	Value        int          `json:"value"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ScoreKey is the identity of a Score.  Writing a Score whose key already
// exists replaces the previous value.
type ScoreKey struct {
	BandID       int
	StageID      int
	JuryMemberID JuryMemberID
	CategoryID   int
}

// Key returns the identity key of s.
func (s Score) Key() ScoreKey {
	return ScoreKey{BandID: s.BandID, StageID: s.StageID, JuryMemberID: s.JuryMemberID, CategoryID: s.CategoryID}
}

// String renders the key as the stable document key used by the store.
func (k ScoreKey) String() string {
	return fmt.Sprintf("b%d:s%d:j%s:c%d", k.BandID, k.StageID, k.JuryMemberID, k.CategoryID)
}

// PerformanceScore is the aggregate of all scores given to one band at one
// stage.  It is derived on demand and never stored.
type PerformanceScore struct {
	BandID  int                        `json:"band_id"`
	StageID int                        `json:"stage_id"`
	Scores  map[Discipline]map[int]int `json:"scores"`

	TotalMusicality int `json:"total_musicality"`
	TotalShow       int `json:"total_show"`
	GrandTotal      int `json:"grand_total"`

	// Unattributed counts records whose jury member is not in the roster.
	// They are kept in the ledger but left out of every total.
	Unattributed int `json:"unattributed,omitempty"`
}

// StageScore is the per-stage projection of a PerformanceScore.
type StageScore struct {
	Musicality int `json:"musicality"`
	Show       int `json:"show"`
	Total      int `json:"total"`
}

// BandTotalScore aggregates a band's performances across every stage.
type BandTotalScore struct {
	BandID          int                `json:"band_id"`
	BandName        string             `json:"band_name"`
	StageScores     map[int]StageScore `json:"stage_scores"`
	TotalMusicality int                `json:"total_musicality"`
	TotalShow       int                `json:"total_show"`
	TotalScore      int                `json:"total_score"`
}
