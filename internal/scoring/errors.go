package scoring

import "errors"

var (
	// ErrNotReady is returned while the ledger or the roster has not been
	// loaded.  Callers must treat it as "unknown", never as "no scores".
	ErrNotReady = errors.New("scores not loaded yet")

	// ErrPersistenceUnavailable wraps every failure to reach the backing
	// store.  Nothing in memory changes when it is returned and the
	// operation may be retried as is.
	ErrPersistenceUnavailable = errors.New("score storage unavailable")

	// ErrUnknownIdentity flags score records that reference a jury member
	// missing from the roster.
	ErrUnknownIdentity = errors.New("score references unknown jury member")

	// ErrInvalidBatch is returned for empty batches, batches spanning more
	// than one (band, stage, jury member) triple and repeated categories.
	ErrInvalidBatch = errors.New("invalid score batch")

	ErrUnknownBand          = errors.New("unknown band")
	ErrUnknownJuryMember    = errors.New("unknown jury member")
	ErrStageMismatch        = errors.New("jury member does not judge this stage")
	ErrCategoryMismatch     = errors.New("category does not belong to the jury member's discipline")
	ErrIncompleteSubmission = errors.New("every category of the discipline must be scored")
)

// IsRetryable reports whether err is a transient storage failure the caller
// may retry unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceUnavailable)
}
