package ranking

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Ranking"

var xlsxHeader = []any{"Rank", "Name", "Email", "Suitability Score", "Oracle Score", "Adjustment", "Score Source", "Error"}

// ExportXLSX writes the table into a spreadsheet at path.
func (t *Table) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range t.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{i + 1, rec.Name, rec.Email, rec.Score, rec.BaseScore, rec.Adjustment, rec.ScoreSource, rec.Err}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
