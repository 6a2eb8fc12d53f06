// Package export renders ranking snapshots for use outside the service: an
// SQL update script for the festival website database and an XLSX
// workbook for the organizers.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

// DefaultTable is the table the SQL script updates when none is set.
const DefaultTable = "bands"

// SQLOptions controls the generated script.
type SQLOptions struct {
	Table       string
	GeneratedAt time.Time
}

// SQLScript renders ranking as a transaction of UPDATE statements, one per
// band, keyed by band id.  Band names only appear inside comments.
func SQLScript(ranking []scoring.RankedBand, opts SQLOptions) string {
	table := sanitizeIdent(opts.Table)
	if table == "" {
		table = DefaultTable
	}
	at := opts.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Festival ranking export\n")
	fmt.Fprintf(&b, "-- Generated at %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "-- Bands: %d\n\n", len(ranking))
	b.WriteString("START TRANSACTION;\n\n")
	for _, r := range ranking {
		fmt.Fprintf(&b, "-- %d. %s\n", r.Rank, commentSafe(r.BandName))
		fmt.Fprintf(&b,
			"UPDATE `%s` SET total_score = %d, total_musicality = %d, total_show = %d, ranking = %d WHERE id = %d;\n",
			table, r.TotalScore, r.TotalMusicality, r.TotalShow, r.Rank, r.BandID)
	}
	if len(ranking) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	return b.String()
}

// sanitizeIdent keeps the characters allowed in an unquoted MySQL
// identifier.
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// commentSafe flattens s onto one line so it cannot end a -- comment.
func commentSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
