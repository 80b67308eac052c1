package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"steam-price-lab/internal/domain"
)

// Workbook sheet names.
const (
	FeaturesSheet = "features"
	TitlesSheet   = "titles"
)

// RenderWorkbook writes engineered_features.xlsx with a features sheet and a titles sheet.
// Numeric feature columns are stored as numbers; an unlabeled row has an empty label cell.
func RenderWorkbook(w io.Writer, titles []domain.Title, records []domain.FeatureRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), FeaturesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(TitlesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	cols := domain.FeatureColumns()
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, stringsRow(domain.ColumnNames(cols)))
	for i := range records {
		r := &records[i]
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			switch {
			case c.Name == domain.LabelColumn && !r.HasLabel():
				row[j] = nil
			case c.Numeric:
				row[j] = c.Value(r)
			default:
				row[j] = c.Text(r)
			}
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, FeaturesSheet, rows, header); err != nil {
		return err
	}

	rows = rows[:0]
	rows = append(rows, stringsRow(TitleColumns))
	for _, t := range titles {
		row := []interface{}{t.AppID, t.Type, t.Name, t.ReleaseDate, boolInt(t.FreeToPlay), nil, nil, t.TypeCode}
		if t.ReleaseDateParsed != nil {
			row[5] = t.ReleaseDateParsed.Format("2006-01-02")
		}
		if t.ReleaseYear != nil {
			row[6] = *t.ReleaseYear
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, TitlesSheet, rows, header); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetRowStyle(sheet, 1, 1, headerStyle)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func stringsRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
