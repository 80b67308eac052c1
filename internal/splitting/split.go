// Package splitting builds normalized, stratified train/validation/test partitions
// from a labeled feature table.
package splitting

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"steam-price-lab/internal/domain"
)

var (
	// ErrNoFeatures is returned when no feature table was produced upstream.
	ErrNoFeatures = errors.New("no feature table")
	// ErrInsufficientSamples is returned when a partition or class is too small to stratify.
	ErrInsufficientSamples = errors.New("insufficient samples for stratified split")
	// ErrUnlabeled is returned when a record has no good_buy_time label.
	ErrUnlabeled = errors.New("feature record is unlabeled")
	// ErrInvalidFraction is returned for split fractions outside (0,1) or summing to >= 1.
	ErrInvalidFraction = errors.New("invalid split fraction")
)

// Options control partition sizes and the shuffle seed.
type Options struct {
	TestSize float64
	ValSize  float64 // fraction of the whole table
	Seed     int64
}

// DefaultOptions returns 20% test, 10% validation, seed 42.
func DefaultOptions() Options {
	return Options{TestSize: 0.2, ValSize: 0.1, Seed: 42}
}

func (o Options) validate() error {
	if o.TestSize <= 0 || o.TestSize >= 1 {
		return fmt.Errorf("test size %v: %w", o.TestSize, ErrInvalidFraction)
	}
	if o.ValSize < 0 || o.ValSize >= 1 {
		return fmt.Errorf("val size %v: %w", o.ValSize, ErrInvalidFraction)
	}
	if o.TestSize+o.ValSize >= 1 {
		return fmt.Errorf("test %v + val %v: %w", o.TestSize, o.ValSize, ErrInvalidFraction)
	}
	return nil
}

// Partition is one split. X is nil when the partition has no rows.
type Partition struct {
	X      *mat.Dense
	Y      []int
	AppIDs []int64
}

// Len returns the number of rows.
func (p Partition) Len() int {
	return len(p.Y)
}

// Dataset holds the three standardized partitions and the scaler fitted on train.
type Dataset struct {
	Train        Partition
	Val          Partition
	Test         Partition
	Scaler       *Standardizer
	FeatureNames []string
}

// SizeReport holds partition sizes and their share of the table.
type SizeReport struct {
	Train, Val, Test          int
	TrainPct, ValPct, TestPct float64
}

// Sizes reports the partition sizes.
func (d *Dataset) Sizes() SizeReport {
	r := SizeReport{Train: d.Train.Len(), Val: d.Val.Len(), Test: d.Test.Len()}
	total := float64(r.Train + r.Val + r.Test)
	if total > 0 {
		r.TrainPct = 100 * float64(r.Train) / total
		r.ValPct = 100 * float64(r.Val) / total
		r.TestPct = 100 * float64(r.Test) / total
	}
	return r
}

// FeatureSet returns the model input columns: every numeric column except the label.
func FeatureSet() []domain.Column {
	var cols []domain.Column
	for _, c := range domain.FeatureColumns() {
		if c.Numeric && c.Name != domain.LabelColumn {
			cols = append(cols, c)
		}
	}
	return cols
}

// Split partitions records into stratified train/val/test sets and standardizes
// them with statistics from train. A nil table yields ErrNoFeatures.
func Split(records []domain.FeatureRecord, opts Options) (*Dataset, error) {
	if records == nil {
		return nil, ErrNoFeatures
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty feature table: %w", ErrInsufficientSamples)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	labels := make([]int, len(records))
	for i := range records {
		if !records[i].HasLabel() {
			return nil, fmt.Errorf("app %d: %w", records[i].AppID, ErrUnlabeled)
		}
		labels[i] = *records[i].GoodBuyTime
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	all := make([]int, len(records))
	for i := range all {
		all[i] = i
	}

	pool, test, err := stratifiedSplit(all, labels, opts.TestSize, rng)
	if err != nil {
		return nil, fmt.Errorf("test split: %w", err)
	}

	train, val := pool, []int(nil)
	if opts.ValSize > 0 {
		train, val, err = stratifiedSplit(pool, labels, opts.ValSize/(1-opts.TestSize), rng)
		if err != nil {
			return nil, fmt.Errorf("validation split: %w", err)
		}
	}

	cols := FeatureSet()
	ds := &Dataset{
		Train:        partition(records, labels, train, cols),
		Val:          partition(records, labels, val, cols),
		Test:         partition(records, labels, test, cols),
		Scaler:       &Standardizer{},
		FeatureNames: domain.ColumnNames(cols),
	}

	if err := ds.Scaler.Fit(ds.Train.X); err != nil {
		return nil, err
	}
	for _, p := range []*Partition{&ds.Train, &ds.Val, &ds.Test} {
		x, err := ds.Scaler.Transform(p.X)
		if err != nil {
			return nil, err
		}
		p.X = x
	}
	return ds, nil
}

// stratifiedSplit carves ceil(frac*len(idx)) rows out of idx, allocating the
// held-out rows per class by largest remainder so class proportions are kept.
func stratifiedSplit(idx []int, labels []int, frac float64, rng *rand.Rand) (keep, held []int, err error) {
	n := len(idx)
	nHeld := int(math.Ceil(frac*float64(n) - 1e-9))
	nKeep := n - nHeld

	byClass := make(map[int][]int)
	for _, i := range idx {
		byClass[labels[i]] = append(byClass[labels[i]], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		if len(byClass[c]) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d member(s): %w", c, len(byClass[c]), ErrInsufficientSamples)
		}
	}
	if nHeld < len(classes) || nKeep < len(classes) {
		return nil, nil, fmt.Errorf("%d rows into %d/%d with %d classes: %w", n, nKeep, nHeld, len(classes), ErrInsufficientSamples)
	}

	alloc := allocate(classes, byClass, n, nHeld)
	for k, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		held = append(held, members[:alloc[k]]...)
		keep = append(keep, members[alloc[k]:]...)
	}

	rng.Shuffle(len(keep), func(i, j int) { keep[i], keep[j] = keep[j], keep[i] })
	rng.Shuffle(len(held), func(i, j int) { held[i], held[j] = held[j], held[i] })
	return keep, held, nil
}

// allocate distributes total rows over classes proportionally to their size.
// Leftover rows go to the largest fractional parts, then larger classes, then lower labels.
func allocate(classes []int, byClass map[int][]int, n, total int) []int {
	alloc := make([]int, len(classes))
	rem := make([]float64, len(classes))
	assigned := 0
	for k, c := range classes {
		exact := float64(total) * float64(len(byClass[c])) / float64(n)
		alloc[k] = int(math.Floor(exact))
		rem[k] = exact - float64(alloc[k])
		assigned += alloc[k]
	}

	order := make([]int, len(classes))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if rem[ka] != rem[kb] {
			return rem[ka] > rem[kb]
		}
		return len(byClass[classes[ka]]) > len(byClass[classes[kb]])
	})
	for i := 0; assigned < total; i++ {
		alloc[order[i%len(order)]]++
		assigned++
	}
	return alloc
}

func partition(records []domain.FeatureRecord, labels []int, rows []int, cols []domain.Column) Partition {
	p := Partition{
		Y:      make([]int, len(rows)),
		AppIDs: make([]int64, len(rows)),
	}
	if len(rows) == 0 {
		return p
	}

	data := make([]float64, 0, len(rows)*len(cols))
	for k, i := range rows {
		r := &records[i]
		for _, c := range cols {
			data = append(data, c.Value(r))
		}
		p.Y[k] = labels[i]
		p.AppIDs[k] = r.AppID
	}
	p.X = mat.NewDense(len(rows), len(cols), data)
	return p
}
