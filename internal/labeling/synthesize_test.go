package labeling

import (
	"errors"
	"testing"

	"steam-price-lab/internal/domain"
)

func rec(id int64, freq, disc, savings float64) domain.FeatureRecord {
	return domain.FeatureRecord{AppID: id, DiscountFrequency: freq, AvgDiscount: disc, MaxSavings: savings}
}

// tenRows has medians freq=0.2, disc=11, savings=5.
func tenRows() []domain.FeatureRecord {
	return []domain.FeatureRecord{
		rec(1, 0.0, 0, 1),   // none
		rec(2, 0.1, 5, 2),   // none
		rec(3, 0.2, 10, 3),  // freq ties the median
		rec(4, 0.3, 12, 4),  // freq, disc
		rec(5, 0.2, 20, 9),  // disc, savings
		rec(6, 0.4, 15, 5),  // freq, disc; savings ties
		rec(7, 0.5, 14, 6),  // all three
		rec(8, 0.05, 30, 7), // disc, savings
		rec(9, 0.6, 1, 8),   // freq, savings
		rec(10, 0.1, 10, 5), // none
	}
}

func TestSynthesize_HandComputedTable(t *testing.T) {
	res, err := Synthesize(tenRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Thresholds.DiscountFrequency != 0.2 {
		t.Errorf("expected freq median 0.2, got %v", res.Thresholds.DiscountFrequency)
	}
	if res.Thresholds.AvgDiscount != 11 {
		t.Errorf("expected discount median 11, got %v", res.Thresholds.AvgDiscount)
	}
	if res.Thresholds.MaxSavings != 5 {
		t.Errorf("expected savings median 5, got %v", res.Thresholds.MaxSavings)
	}

	want := []int{0, 0, 0, 1, 1, 1, 1, 1, 1, 0}
	for i, r := range res.Records {
		if r.GoodBuyTime == nil {
			t.Fatalf("record %d has no label", r.AppID)
		}
		if *r.GoodBuyTime != want[i] {
			t.Errorf("app %d: expected label %d, got %d", r.AppID, want[i], *r.GoodBuyTime)
		}
	}
	if res.Positives != 6 || res.Negatives != 4 {
		t.Errorf("expected 6/4 balance, got %d/%d", res.Positives, res.Negatives)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	a, err := Synthesize(tenRows())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthesize(tenRows())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Records {
		if *a.Records[i].GoodBuyTime != *b.Records[i].GoodBuyTime {
			t.Errorf("row %d differs between runs", i)
		}
	}
}

func TestSynthesize_DoesNotMutateInput(t *testing.T) {
	in := tenRows()
	if _, err := Synthesize(in); err != nil {
		t.Fatal(err)
	}
	for _, r := range in {
		if r.GoodBuyTime != nil {
			t.Fatalf("input record %d was labeled in place", r.AppID)
		}
	}
}

func TestSynthesize_Empty(t *testing.T) {
	_, err := Synthesize(nil)
	if !errors.Is(err, ErrEmptyFeatureTable) {
		t.Errorf("expected ErrEmptyFeatureTable, got %v", err)
	}
}

func TestSynthesize_AllEqualIsNegative(t *testing.T) {
	in := []domain.FeatureRecord{rec(1, 0.5, 10, 2), rec(2, 0.5, 10, 2), rec(3, 0.5, 10, 2)}
	res, err := Synthesize(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Records {
		if *r.GoodBuyTime != 0 {
			t.Errorf("app %d: ties with the median must not count", r.AppID)
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Median(tc.in); got != tc.want {
				t.Errorf("Median(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
