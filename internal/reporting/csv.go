package reporting

import (
	"encoding/csv"
	"io"
	"strconv"

	"steam-price-lab/internal/domain"
)

// TitleColumns is the header of processed_application_info.csv.
var TitleColumns = []string{
	"appid", "type", "name", "releasedate", "freetoplay",
	"release_date_parsed", "release_year", "type_encoded",
}

// RenderTitlesCSV writes the cleaned, transformed metadata table.
// Undefined parsed dates and years are written as empty cells.
func RenderTitlesCSV(w io.Writer, titles []domain.Title) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TitleColumns); err != nil {
		return err
	}

	for _, t := range titles {
		parsed, year := "", ""
		if t.ReleaseDateParsed != nil {
			parsed = t.ReleaseDateParsed.Format("2006-01-02")
		}
		if t.ReleaseYear != nil {
			year = strconv.Itoa(*t.ReleaseYear)
		}
		row := []string{
			strconv.FormatInt(t.AppID, 10),
			t.Type,
			t.Name,
			t.ReleaseDate,
			boolCell(t.FreeToPlay),
			parsed,
			year,
			strconv.Itoa(t.TypeCode),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderFeaturesCSV writes the feature table in schema order, label last.
func RenderFeaturesCSV(w io.Writer, records []domain.FeatureRecord) error {
	cols := domain.FeatureColumns()
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ColumnNames(cols)); err != nil {
		return err
	}

	row := make([]string, len(cols))
	for i := range records {
		for j, c := range cols {
			row[j] = c.Text(&records[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
