package plotting

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"steam-price-lab/internal/domain"
)

// CorrelationFeatures are the columns of the correlation panel.
var CorrelationFeatures = []string{"avg_initial_price", "discount_frequency", "max_discount", "price_volatility"}

// Histogram buckets values into bins equal-width bins over [min, max].
// The last bin is closed. A constant series lands in one bin.
func Histogram(values []float64, bins int) (edges []float64, counts []int) {
	if len(values) == 0 || bins < 1 {
		return nil, nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges = make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	counts = make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}
	return edges, counts
}

// Column extracts one named numeric column. ok is false when no numeric
// feature column has that name.
func Column(records []domain.FeatureRecord, name string) (values []float64, ok bool) {
	for _, c := range domain.FeatureColumns() {
		if c.Name != name || !c.Numeric {
			continue
		}
		out := make([]float64, len(records))
		for i := range records {
			out[i] = c.Value(&records[i])
		}
		return out, true
	}
	return nil, false
}

// mustColumn is Column for names fixed in this package.
func mustColumn(records []domain.FeatureRecord, name string) []float64 {
	values, ok := Column(records, name)
	if !ok {
		panic(fmt.Sprintf("plotting: unknown feature column %q", name))
	}
	return values
}

// CorrelationMatrix returns the Pearson correlation of the named columns.
// Undefined entries (zero-variance columns) are 0. Nil with fewer than 2 records
// or when a name is not a numeric feature column.
func CorrelationMatrix(records []domain.FeatureRecord, names []string) *mat.SymDense {
	if len(records) < 2 {
		return nil
	}
	x := mat.NewDense(len(records), len(names), nil)
	for j, name := range names {
		col, ok := Column(records, name)
		if !ok {
			return nil
		}
		x.SetCol(j, col)
	}

	corr := mat.NewSymDense(len(names), nil)
	stat.CorrelationMatrix(corr, x, nil)
	for i := 0; i < len(names); i++ {
		for j := i; j < len(names); j++ {
			if v := corr.At(i, j); math.IsNaN(v) {
				corr.SetSym(i, j, 0)
			}
		}
	}
	return corr
}

// ReleaseYearCounts counts titles per known release year, ascending.
func ReleaseYearCounts(records []domain.FeatureRecord) (years []int, counts []int) {
	byYear := make(map[int]int)
	for _, r := range records {
		if r.ReleaseYear == 0 {
			continue
		}
		byYear[r.ReleaseYear]++
	}
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	counts = make([]int, len(years))
	for i, y := range years {
		counts[i] = byYear[y]
	}
	return years, counts
}

// LabelCounts returns the number of negative and positive labels. Unlabeled rows are ignored.
func LabelCounts(records []domain.FeatureRecord) (bad, good int) {
	for _, r := range records {
		if !r.HasLabel() {
			continue
		}
		if *r.GoodBuyTime == 1 {
			good++
		} else {
			bad++
		}
	}
	return bad, good
}
