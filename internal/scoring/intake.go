package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// Submission is one jury form: the category values a jury member gives to a
// band at a stage.
type Submission struct {
	BandID       int
	StageID      int
	JuryMemberID model.JuryMemberID
	Values       map[int]int // category id -> value
}

// Submit checks a form against the roster and stores it through the ledger.
// The form must cover every category of the jury member's discipline
// exactly once.  The stored records are returned ordered by category.
func (e *Engine) Submit(ctx context.Context, sub Submission) ([]model.Score, error) {
	snap, ok := e.roster.Current()
	if !ok || !e.ledger.Loaded() {
		return nil, ErrNotReady
	}
	if _, ok := snap.Band(sub.BandID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBand, sub.BandID)
	}
	jury, ok := snap.JuryMember(sub.JuryMemberID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJuryMember, sub.JuryMemberID)
	}
	if sub.StageID != jury.StageID {
		return nil, fmt.Errorf("%w: member judges stage %d, got %d", ErrStageMismatch, jury.StageID, sub.StageID)
	}
	for catID := range sub.Values {
		c, ok := snap.Category(catID)
		if !ok || c.Discipline != jury.Discipline {
			return nil, fmt.Errorf("%w: category %d", ErrCategoryMismatch, catID)
		}
	}
	required := snap.CategoriesFor(jury.Discipline)
	if len(required) == 0 || len(sub.Values) != len(required) {
		return nil, fmt.Errorf("%w: got %d of %d categories", ErrIncompleteSubmission, len(sub.Values), len(required))
	}

	now := time.Now().UTC()
	scores := make([]model.Score, 0, len(required))
	for _, c := range required {
		scores = append(scores, model.Score{
			BandID:       sub.BandID,
			StageID:      sub.StageID,
			JuryMemberID: sub.JuryMemberID,
			CategoryID:   c.ID,
			Value:        sub.Values[c.ID],
			Timestamp:    now,
		})
	}
	if err := e.ledger.SubmitBatch(ctx, scores); err != nil {
		return nil, err
	}
	return scores, nil
}
