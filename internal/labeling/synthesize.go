// Package labeling derives the synthetic good_buy_time target from the feature table.
package labeling

import (
	"errors"
	"sort"

	"steam-price-lab/internal/domain"
)

// ErrEmptyFeatureTable is returned when there are no feature records to label.
var ErrEmptyFeatureTable = errors.New("feature table is empty")

// Thresholds are the table-wide medians the label compares against.
type Thresholds struct {
	DiscountFrequency float64
	AvgDiscount       float64
	MaxSavings        float64
}

// Result is the labeled table plus the thresholds used and the class balance.
type Result struct {
	Records    []domain.FeatureRecord
	Thresholds Thresholds
	Positives  int
	Negatives  int
}

// Synthesize labels every record: good_buy_time = 1 when at least two of
// discount_frequency, avg_discount and max_savings strictly exceed their medians.
// Medians are computed once over the whole table. The input is not modified.
func Synthesize(records []domain.FeatureRecord) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFeatureTable
	}

	th := ComputeThresholds(records)
	out := make([]domain.FeatureRecord, len(records))
	res := &Result{Records: out, Thresholds: th}

	for i, r := range records {
		hits := 0
		if r.DiscountFrequency > th.DiscountFrequency {
			hits++
		}
		if r.AvgDiscount > th.AvgDiscount {
			hits++
		}
		if r.MaxSavings > th.MaxSavings {
			hits++
		}

		label := 0
		if hits >= 2 {
			label = 1
			res.Positives++
		} else {
			res.Negatives++
		}
		r.GoodBuyTime = &label
		out[i] = r
	}
	return res, nil
}

// ComputeThresholds returns the medians of the three label inputs.
func ComputeThresholds(records []domain.FeatureRecord) Thresholds {
	freq := make([]float64, len(records))
	disc := make([]float64, len(records))
	sav := make([]float64, len(records))
	for i, r := range records {
		freq[i] = r.DiscountFrequency
		disc[i] = r.AvgDiscount
		sav[i] = r.MaxSavings
	}
	return Thresholds{
		DiscountFrequency: Median(freq),
		AvgDiscount:       Median(disc),
		MaxSavings:        Median(sav),
	}
}

// Median returns the middle value, or the midpoint of the two central values
// for an even count. Returns 0 for empty input. values is not modified.
func Median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.5)
}

// percentile uses linear interpolation between closest ranks.
// sorted must be pre-sorted ASC.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
