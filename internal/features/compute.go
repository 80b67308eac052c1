// Package features reduces each title's price series to one statistics record.
package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"steam-price-lab/internal/domain"
)

// Compute builds the feature record of one title from its observations.
// The series is sorted by date internally; obs is not modified.
// Every statistic that is undefined for the series is 0.
func Compute(title domain.Title, obs []domain.PriceObservation) domain.FeatureRecord {
	rec := domain.FeatureRecord{
		AppID:        title.AppID,
		GameName:     title.Name,
		GameType:     title.Type,
		IsFreeToPlay: title.FreeToPlay,
	}
	if title.ReleaseYear != nil {
		rec.ReleaseYear = *title.ReleaseYear
	}

	n := len(obs)
	rec.TotalObservationDays = n
	if n == 0 {
		return rec
	}

	sorted := make([]domain.PriceObservation, n)
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	initial := make([]float64, n)
	final := make([]float64, n)
	discount := make([]float64, n)
	savings := make([]float64, n)
	var discountedSavings []float64
	for i, o := range sorted {
		initial[i] = o.InitialPrice
		final[i] = o.FinalPrice
		discount[i] = o.Discount
		savings[i] = o.SavingsAmount
		if o.Discount > 0 {
			rec.TotalDiscountDays++
			discountedSavings = append(discountedSavings, o.SavingsAmount)
		}
	}

	rec.AvgInitialPrice = stat.Mean(initial, nil)
	rec.MinInitialPrice = floats.Min(initial)
	rec.MaxInitialPrice = floats.Max(initial)
	rec.PriceVolatility = sampleStdDev(initial)

	rec.AvgFinalPrice = stat.Mean(final, nil)
	rec.MinFinalPrice = floats.Min(final)
	rec.MaxFinalPrice = floats.Max(final)

	rec.AvgDiscount = stat.Mean(discount, nil)
	rec.MaxDiscount = floats.Max(discount)
	rec.DiscountFrequency = float64(rec.TotalDiscountDays) / float64(n)

	rec.PriceTrend = PriceTrend(initial)

	months, means := monthlyMeanDiscount(sorted)
	rec.SeasonalDiscountPattern = defined(sampleVariance(means))
	rec.BestDiscountMonth, rec.WorstDiscountMonth = extremeMonths(months, means)

	rec.MaxSavings = floats.Max(savings)
	if len(discountedSavings) > 0 {
		rec.AvgSavingsWhenDiscounted = stat.Mean(discountedSavings, nil)
	}

	sanitize(&rec)
	return rec
}

// PriceTrend returns the Pearson correlation between the 0-based position and
// the price of a date-ordered series. Series shorter than 2 points and
// constant series have no defined correlation and yield 0.
func PriceTrend(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return 0
	}
	if floats.Max(prices) == floats.Min(prices) {
		return 0
	}

	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}
	r := defined(stat.Correlation(index, prices, nil))
	return math.Max(-1, math.Min(1, r))
}

// monthlyMeanDiscount groups by calendar month and returns the present months in
// ascending order with the mean discount of each.
func monthlyMeanDiscount(obs []domain.PriceObservation) ([]int, []float64) {
	var sums, counts [13]float64
	for _, o := range obs {
		if o.Month < 1 || o.Month > 12 {
			continue
		}
		sums[o.Month] += o.Discount
		counts[o.Month]++
	}

	var months []int
	var means []float64
	for m := 1; m <= 12; m++ {
		if counts[m] == 0 {
			continue
		}
		months = append(months, m)
		means = append(means, sums[m]/counts[m])
	}
	return months, means
}

// extremeMonths returns the months with the highest and lowest mean discount.
// Ties go to the earliest month.
func extremeMonths(months []int, means []float64) (best, worst int) {
	if len(months) == 0 {
		return 0, 0
	}
	bi, wi := 0, 0
	for i := 1; i < len(means); i++ {
		if means[i] > means[bi] {
			bi = i
		}
		if means[i] < means[wi] {
			wi = i
		}
	}
	return months[bi], months[wi]
}

// sampleStdDev is the n-1 standard deviation, 0 for fewer than 2 points.
func sampleStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return defined(stat.StdDev(x, nil))
}

// sampleVariance is the n-1 variance, NaN for fewer than 2 points.
func sampleVariance(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Variance(x, nil)
}

func defined(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// sanitize replaces any non-finite statistic with 0.
func sanitize(r *domain.FeatureRecord) {
	for _, f := range []*float64{
		&r.AvgInitialPrice, &r.MinInitialPrice, &r.MaxInitialPrice, &r.PriceVolatility,
		&r.AvgFinalPrice, &r.MinFinalPrice, &r.MaxFinalPrice,
		&r.AvgDiscount, &r.MaxDiscount, &r.DiscountFrequency,
		&r.PriceTrend, &r.SeasonalDiscountPattern,
		&r.MaxSavings, &r.AvgSavingsWhenDiscounted,
	} {
		*f = defined(*f)
	}
}
