// Package cleaning drops incomplete and duplicate records from raw catalog input.
package cleaning

import (
	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/transform"
)

// DefaultMinObservations is the default series length threshold.
// A series must have strictly more rows than this to be kept.
const DefaultMinObservations = 10

// Options configures the cleaner.
type Options struct {
	MinObservations int // keep series with more than this many complete rows
}

// DefaultOptions returns the default cleaning options.
func DefaultOptions() Options {
	return Options{MinObservations: DefaultMinObservations}
}

// Result is the output of Clean.
type Result struct {
	Titles []domain.Title
	Prices domain.PriceTables
	Report Report
}

// Report counts what each filter removed.
type Report struct {
	TitlesIn        int
	TitlesOut       int
	MissingRequired int // rows without app_id or name
	Duplicates      int // later occurrences of an app_id

	SeriesIn          int
	SeriesOut         int
	IncompleteRows    int      // price rows with any missing field
	InvalidDates      int      // complete price rows whose date does not parse
	ShortSeriesKeys   []string // keys dropped for insufficient history, lexical order
	FilledType        int
	FilledReleaseDate int
	FilledFreeToPlay  int
}

// Clean runs CleanTitles and CleanPrices.
func Clean(titles []domain.RawTitle, prices domain.RawPriceTables, opts Options) *Result {
	res := &Result{}
	res.Titles = CleanTitles(titles, &res.Report)
	res.Prices = CleanPrices(prices, opts.MinObservations, &res.Report)
	return res
}

// CleanTitles drops rows missing app_id or name, fills defaults for type,
// release date and free-to-play, and keeps the first row per app_id.
// report may be nil.
func CleanTitles(raw []domain.RawTitle, report *Report) []domain.Title {
	if report == nil {
		report = &Report{}
	}
	report.TitlesIn += len(raw)

	seen := make(map[int64]struct{}, len(raw))
	out := make([]domain.Title, 0, len(raw))

	for _, r := range raw {
		if r.AppID == nil || r.Name == nil {
			report.MissingRequired++
			continue
		}
		if _, dup := seen[*r.AppID]; dup {
			report.Duplicates++
			continue
		}
		seen[*r.AppID] = struct{}{}

		t := domain.Title{
			AppID:       *r.AppID,
			Name:        *r.Name,
			Type:        domain.UnknownType,
			ReleaseDate: domain.UnknownReleaseDate,
		}
		if r.Type != nil {
			t.Type = *r.Type
		} else {
			report.FilledType++
		}
		if r.ReleaseDate != nil {
			t.ReleaseDate = *r.ReleaseDate
		} else {
			report.FilledReleaseDate++
		}
		if r.FreeToPlay != nil {
			t.FreeToPlay = *r.FreeToPlay
		} else {
			report.FilledFreeToPlay++
		}
		out = append(out, t)
	}

	report.TitlesOut += len(out)
	return out
}

// CleanPrices drops incomplete rows and rows with an unparseable date, then
// removes series that end up with minObservations rows or fewer. report may be nil.
func CleanPrices(raw domain.RawPriceTables, minObservations int, report *Report) domain.PriceTables {
	if report == nil {
		report = &Report{}
	}
	report.SeriesIn += len(raw)

	out := make(domain.PriceTables, len(raw))
	for _, key := range raw.SortedKeys() {
		rows := raw[key]
		kept := make([]domain.PriceRow, 0, len(rows))
		for _, r := range rows {
			if !r.CompleteRow() {
				report.IncompleteRows++
				continue
			}
			if _, err := transform.ParseObservationDate(*r.Date); err != nil {
				report.InvalidDates++
				continue
			}
			kept = append(kept, domain.PriceRow{
				Date:         *r.Date,
				InitialPrice: *r.InitialPrice,
				FinalPrice:   *r.FinalPrice,
				Discount:     *r.Discount,
			})
		}

		if len(kept) <= minObservations {
			report.ShortSeriesKeys = append(report.ShortSeriesKeys, key)
			continue
		}
		out[key] = kept
	}

	report.SeriesOut += len(out)
	return out
}
