package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

func sampleRanking() []scoring.RankedBand {
	return []scoring.RankedBand{
		{Rank: 1, BandTotalScore: model.BandTotalScore{
			BandID: 2, BandName: "The\nDynamics", TotalMusicality: 30, TotalShow: 12, TotalScore: 42,
			StageScores: map[int]model.StageScore{1: {Musicality: 30, Show: 12, Total: 42}, 2: {}},
		}},
		{Rank: 2, BandTotalScore: model.BandTotalScore{
			BandID: 1, BandName: "Robert'); DROP TABLE bands;--", TotalScore: 0,
			StageScores: map[int]model.StageScore{1: {}, 2: {}},
		}},
	}
}

func TestSQLScript(t *testing.T) {
	at := time.Date(2026, 6, 21, 23, 0, 0, 0, time.UTC)
	got := SQLScript(sampleRanking(), SQLOptions{GeneratedAt: at})

	assert.Contains(t, got, "-- Generated at 2026-06-21T23:00:00Z\n")
	assert.Contains(t, got, "START TRANSACTION;\n")
	assert.True(t, strings.HasSuffix(got, "COMMIT;\n"))
	assert.Contains(t, got, "-- 1. The Dynamics\n")
	assert.Contains(t, got,
		"UPDATE `bands` SET total_score = 42, total_musicality = 30, total_show = 12, ranking = 1 WHERE id = 2;\n")
	assert.Contains(t, got,
		"UPDATE `bands` SET total_score = 0, total_musicality = 0, total_show = 0, ranking = 2 WHERE id = 1;\n")

	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "Robert") {
			assert.True(t, strings.HasPrefix(line, "-- "), "band names only appear in comments: %q", line)
		}
	}
}

func TestSQLScript_TableName(t *testing.T) {
	got := SQLScript(sampleRanking()[:1], SQLOptions{Table: "festival_bands`; --"})
	assert.Contains(t, got, "UPDATE `festival_bands` SET")

	empty := SQLScript(nil, SQLOptions{})
	assert.Contains(t, empty, "START TRANSACTION;\n\nCOMMIT;\n")
	assert.NotContains(t, empty, "UPDATE")
}

func TestWorkbook(t *testing.T) {
	stages := []model.Stage{{ID: 1, Name: "Hoofdpodium"}, {ID: 2, Name: "Cafe 61"}}
	buf, name, err := Workbook(sampleRanking(), stages)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "ranking_"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{rankingSheet}, f.GetSheetList())
	rows, err := f.GetRows(rankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Rank", "Band ID", "Band",
		"Hoofdpodium muzikaliteit", "Hoofdpodium show", "Hoofdpodium totaal",
		"Cafe 61 muzikaliteit", "Cafe 61 show", "Cafe 61 totaal",
		"Totaal muzikaliteit", "Totaal show", "Totaal",
	}, rows[0])
	assert.Equal(t, []string{"1", "2", "The\nDynamics", "30", "12", "42", "0", "0", "0", "30", "12", "42"}, rows[1])
}
