// Package transform enriches cleaned titles and price rows with derived fields.
// Functions never modify their inputs.
package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"steam-price-lab/internal/domain"
)

// ReleaseDateLayout is the layout of applicationInformation.csv releasedate, e.g. "14-Nov-18".
const ReleaseDateLayout = "02-Jan-06"

// observationDateLayouts are tried in order when parsing a price row date.
var observationDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Report counts rows the transformer could not use.
type Report struct {
	UnparsedReleaseDates int      // titles whose release date is undefined
	UnparsedRows         int      // price rows with an unparseable date
	NonNumericKeys       []string // series keys not convertible to an app id
}

// Apply transforms titles and price tables into a catalog.
func Apply(titles []domain.Title, prices domain.PriceTables) (*domain.Catalog, Report) {
	var report Report
	out := &domain.Catalog{
		Titles: Titles(titles, &report),
		Prices: Prices(prices, &report),
	}
	return out, report
}

// Titles parses release dates and assigns dense type codes. report may be nil.
func Titles(in []domain.Title, report *Report) []domain.Title {
	if report == nil {
		report = &Report{}
	}
	codes := TypeCodes(in)

	out := make([]domain.Title, len(in))
	for i, t := range in {
		t.ReleaseDateParsed = nil
		t.ReleaseYear = nil
		if parsed, ok := ParseReleaseDate(t.ReleaseDate); ok {
			year := parsed.Year()
			t.ReleaseDateParsed = &parsed
			t.ReleaseYear = &year
		} else {
			report.UnparsedReleaseDates++
		}
		t.TypeCode = codes[t.Type]
		out[i] = t
	}
	return out
}

// TypeCodes maps each observed type to its index in the sorted set of types.
func TypeCodes(titles []domain.Title) map[string]int {
	set := make(map[string]struct{})
	for _, t := range titles {
		set[t.Type] = struct{}{}
	}
	types := make([]string, 0, len(set))
	for typ := range set {
		types = append(types, typ)
	}
	sort.Strings(types)

	codes := make(map[string]int, len(types))
	for i, typ := range types {
		codes[typ] = i
	}
	return codes
}

// ParseReleaseDate parses s with ReleaseDateLayout.
// The "Unknown" sentinel and malformed strings return ok=false.
func ParseReleaseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == domain.UnknownReleaseDate {
		return time.Time{}, false
	}
	t, err := time.Parse(ReleaseDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseObservationDate parses a price row date.
func ParseObservationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range observationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized observation date %q", s)
}

// Prices converts every cleaned row to an observation with calendar and
// monetary fields. Rows with unparseable dates are dropped. report may be nil.
func Prices(in domain.PriceTables, report *Report) domain.PriceSeries {
	if report == nil {
		report = &Report{}
	}

	out := make(domain.PriceSeries, len(in))
	for _, key := range in.SortedKeys() {
		appID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			report.NonNumericKeys = append(report.NonNumericKeys, key)
			appID = 0
		}

		rows := in[key]
		series := make([]domain.PriceObservation, 0, len(rows))
		for _, row := range rows {
			obs, err := Observation(appID, row)
			if err != nil {
				report.UnparsedRows++
				continue
			}
			series = append(series, obs)
		}
		out[key] = series
	}
	return out
}

// Observation builds a single enriched observation from a cleaned row.
func Observation(appID int64, row domain.PriceRow) (domain.PriceObservation, error) {
	date, err := ParseObservationDate(row.Date)
	if err != nil {
		return domain.PriceObservation{}, err
	}

	month := int(date.Month())
	return domain.PriceObservation{
		AppID:         appID,
		Date:          date,
		InitialPrice:  row.InitialPrice,
		FinalPrice:    row.FinalPrice,
		Discount:      row.Discount,
		Year:          date.Year(),
		Month:         month,
		DayOfWeek:     MondayFirstWeekday(date),
		Quarter:       (month-1)/3 + 1,
		SavingsAmount: row.InitialPrice - row.FinalPrice,
		HasDiscount:   row.Discount > 0,
	}, nil
}

// MondayFirstWeekday returns the weekday of t with Monday=0 and Sunday=6.
func MondayFirstWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
