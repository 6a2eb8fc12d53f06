package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

const rankingSheet = "Ranking"

// Workbook renders ranking as a single-sheet XLSX file.  Every stage gets a
// musicality, show and total column; the last three columns hold the
// festival totals.  It returns the file content and a suggested filename.
func Workbook(ranking []scoring.RankedBand, stages []model.Stage) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rankingSheet)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("header style: %w", err)
	}

	header := []interface{}{"Rank", "Band ID", "Band"}
	for _, st := range stages {
		header = append(header, st.Name+" muzikaliteit", st.Name+" show", st.Name+" totaal")
	}
	header = append(header, "Totaal muzikaliteit", "Totaal show", "Totaal")
	if err := f.SetSheetRow(rankingSheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}
	lastCol := colName(len(header) - 1)
	if err := f.SetCellStyle(rankingSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, "", fmt.Errorf("style header: %w", err)
	}
	f.SetColWidth(rankingSheet, "A", "B", 8)
	f.SetColWidth(rankingSheet, "C", "C", 28)
	if len(header) > 3 {
		f.SetColWidth(rankingSheet, colName(3), lastCol, 16)
	}

	for i, r := range ranking {
		row := []interface{}{r.Rank, r.BandID, r.BandName}
		for _, st := range stages {
			ss := r.StageScores[st.ID]
			row = append(row, ss.Musicality, ss.Show, ss.Total)
		}
		row = append(row, r.TotalMusicality, r.TotalShow, r.TotalScore)
		if err := f.SetSheetRow(rankingSheet, cell("A", i+2), &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(rankingSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, "", fmt.Errorf("freeze header: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	filename := fmt.Sprintf("ranking_%s.xlsx", time.Now().UTC().Format("20060102-1504"))
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
