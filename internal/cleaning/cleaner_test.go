package cleaning

import (
	"fmt"
	"testing"

	"steam-price-lab/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func completeRows(n int) []domain.RawPriceRow {
	rows := make([]domain.RawPriceRow, n)
	for i := range rows {
		rows[i] = domain.RawPriceRow{
			Date:         ptr(fmt.Sprintf("2020-01-%02d", i+1)),
			InitialPrice: ptr(9.99),
			FinalPrice:   ptr(9.99),
			Discount:     ptr(0.0),
		}
	}
	return rows
}

func TestCleanTitles_DropsRowMissingName(t *testing.T) {
	// 3 rows, one missing name → 2 rows
	raw := []domain.RawTitle{
		{AppID: ptr(int64(1)), Name: ptr("A"), Type: ptr("game"), ReleaseDate: ptr("01-Jan-20"), FreeToPlay: ptr(false)},
		{AppID: ptr(int64(2)), Type: ptr("game")},
		{AppID: ptr(int64(3)), Name: ptr("C")},
	}

	var report Report
	got := CleanTitles(raw, &report)

	if len(got) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(got))
	}
	if got[0].AppID != 1 || got[1].AppID != 3 {
		t.Errorf("expected app ids [1 3], got [%d %d]", got[0].AppID, got[1].AppID)
	}
	if report.MissingRequired != 1 {
		t.Errorf("expected 1 missing-required row, got %d", report.MissingRequired)
	}
}

func TestCleanTitles_DropsRowMissingID(t *testing.T) {
	raw := []domain.RawTitle{
		{Name: ptr("orphan")},
		{AppID: ptr(int64(9)), Name: ptr("kept")},
	}

	got := CleanTitles(raw, nil)
	if len(got) != 1 || got[0].AppID != 9 {
		t.Fatalf("expected only app 9, got %+v", got)
	}
}

func TestCleanTitles_FillsDefaults(t *testing.T) {
	raw := []domain.RawTitle{
		{AppID: ptr(int64(1)), Name: ptr("bare")},
	}

	var report Report
	got := CleanTitles(raw, &report)

	if len(got) != 1 {
		t.Fatalf("expected 1 title, got %d", len(got))
	}
	title := got[0]
	if title.Type != domain.UnknownType {
		t.Errorf("expected type %q, got %q", domain.UnknownType, title.Type)
	}
	if title.ReleaseDate != domain.UnknownReleaseDate {
		t.Errorf("expected release date %q, got %q", domain.UnknownReleaseDate, title.ReleaseDate)
	}
	if title.FreeToPlay {
		t.Errorf("expected missing free-to-play to default to paid")
	}
	if report.FilledType != 1 || report.FilledReleaseDate != 1 || report.FilledFreeToPlay != 1 {
		t.Errorf("unexpected fill counts: %+v", report)
	}
}

func TestCleanTitles_KeepsFirstDuplicate(t *testing.T) {
	raw := []domain.RawTitle{
		{AppID: ptr(int64(5)), Name: ptr("first")},
		{AppID: ptr(int64(6)), Name: ptr("other")},
		{AppID: ptr(int64(5)), Name: ptr("second")},
	}

	var report Report
	got := CleanTitles(raw, &report)

	if len(got) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(got))
	}
	if got[0].Name != "first" {
		t.Errorf("expected first occurrence to win, got %q", got[0].Name)
	}
	if report.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", report.Duplicates)
	}
}

func TestCleanPrices_ExcludesShortSeries(t *testing.T) {
	raw := domain.RawPriceTables{
		"100": completeRows(8),  // too short
		"200": completeRows(10), // exactly the threshold, still too short
		"300": completeRows(11),
	}

	var report Report
	got := CleanPrices(raw, DefaultMinObservations, &report)

	if _, ok := got["100"]; ok {
		t.Errorf("series with 8 rows must be excluded")
	}
	if _, ok := got["200"]; ok {
		t.Errorf("series with 10 rows must be excluded (strictly more required)")
	}
	if len(got["300"]) != 11 {
		t.Errorf("expected series 300 with 11 rows, got %d", len(got["300"]))
	}
	if len(report.ShortSeriesKeys) != 2 || report.ShortSeriesKeys[0] != "100" || report.ShortSeriesKeys[1] != "200" {
		t.Errorf("unexpected short series keys: %v", report.ShortSeriesKeys)
	}
}

func TestCleanPrices_DropsIncompleteRowsBeforeThreshold(t *testing.T) {
	rows := completeRows(12)
	rows[0].Discount = nil
	rows[5].Date = nil

	got := CleanPrices(domain.RawPriceTables{"1": rows}, DefaultMinObservations, nil)
	if _, ok := got["1"]; ok {
		t.Fatalf("12 rows with 2 incomplete leaves 10, series must be excluded")
	}

	rows = completeRows(13)
	rows[3].FinalPrice = nil
	got = CleanPrices(domain.RawPriceTables{"1": rows}, DefaultMinObservations, nil)
	if len(got["1"]) != 12 {
		t.Errorf("expected 12 complete rows, got %d", len(got["1"]))
	}
}

func TestCleanPrices_InvalidDatesCountBeforeThreshold(t *testing.T) {
	rows := completeRows(11)
	rows[4].Date = ptr("not a date")
	allBad := completeRows(11)
	for i := range allBad {
		allBad[i].Date = ptr(fmt.Sprintf("2020-13-%02d", i+1))
	}

	var report Report
	got := CleanPrices(domain.RawPriceTables{"1": rows, "2": allBad, "3": completeRows(11)}, DefaultMinObservations, &report)

	if _, ok := got["1"]; ok {
		t.Errorf("11 rows with 1 bad date leaves 10, series must be excluded")
	}
	if _, ok := got["2"]; ok {
		t.Errorf("series without a parseable date must be excluded")
	}
	if len(got["3"]) != 11 {
		t.Errorf("expected series 3 with 11 rows, got %d", len(got["3"]))
	}
	if report.InvalidDates != 12 {
		t.Errorf("expected 12 invalid dates, got %d", report.InvalidDates)
	}
	if report.IncompleteRows != 0 {
		t.Errorf("bad dates must not count as incomplete rows, got %d", report.IncompleteRows)
	}
	if len(report.ShortSeriesKeys) != 2 {
		t.Errorf("unexpected short series keys: %v", report.ShortSeriesKeys)
	}
}

func TestClean_RetainedSeriesInvariant(t *testing.T) {
	raw := domain.RawPriceTables{}
	for n := 0; n < 20; n++ {
		raw[fmt.Sprint(n)] = completeRows(n)
	}

	res := Clean(nil, raw, DefaultOptions())
	for key, rows := range res.Prices {
		if len(rows) <= DefaultMinObservations {
			t.Errorf("series %s retained with %d rows", key, len(rows))
		}
	}
	if res.Report.SeriesOut != 9 {
		t.Errorf("expected 9 retained series (11..19 rows), got %d", res.Report.SeriesOut)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	rows := completeRows(11)
	raw := domain.RawPriceTables{"1": rows}

	_ = Clean(nil, raw, DefaultOptions())

	if len(raw["1"]) != 11 || raw["1"][0].Date == nil {
		t.Errorf("input rows were modified")
	}
}
