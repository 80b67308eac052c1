package splitting

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("standardizer not fitted")

// Standardizer centers each column on its mean and divides by its population
// standard deviation. Columns with zero variance keep scale 1.
type Standardizer struct {
	Mean  []float64
	Scale []float64
}

// Fit computes per-column statistics from x.
func (s *Standardizer) Fit(x *mat.Dense) error {
	if x == nil {
		return fmt.Errorf("fit standardizer: %w", ErrInsufficientSamples)
	}
	rows, cols := x.Dims()
	if rows == 0 {
		return fmt.Errorf("fit standardizer: %w", ErrInsufficientSamples)
	}

	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std == 0 {
			std = 1
		}
		s.Scale[j] = std
	}
	return nil
}

// Fitted reports whether Fit has completed.
func (s *Standardizer) Fitted() bool {
	return s.Mean != nil
}

// Transform returns a standardized copy of x. A nil matrix stays nil.
func (s *Standardizer) Transform(x *mat.Dense) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, nil
	}
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, fmt.Errorf("transform: got %d columns, fitted on %d", cols, len(s.Mean))
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}
