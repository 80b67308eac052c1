package domain

import "strconv"

// LabelColumn is the name of the synthesized target column.
const LabelColumn = "good_buy_time"

// FeatureRecord is the per-title statistics row produced by the aggregator.
// Corresponds to feature_records table in PostgreSQL.
// Numeric fields are never undefined: anything that cannot be computed is 0.
type FeatureRecord struct {
	// Identity / metadata passthrough
	AppID        int64
	GameName     string
	GameType     string
	IsFreeToPlay bool
	ReleaseYear  int // 0 if release date unknown

	// Price level
	AvgInitialPrice float64
	MinInitialPrice float64
	MaxInitialPrice float64
	PriceVolatility float64 // sample stddev of initial price
	AvgFinalPrice   float64
	MinFinalPrice   float64
	MaxFinalPrice   float64

	// Discounts
	AvgDiscount       float64
	MaxDiscount       float64
	DiscountFrequency float64 // fraction of observations with discount > 0
	TotalDiscountDays int

	// Temporal / structural
	TotalObservationDays    int
	PriceTrend              float64 // Pearson(index, initial price)
	SeasonalDiscountPattern float64 // variance of monthly mean discount

	// Purchase timing
	BestDiscountMonth  int // 1-12
	WorstDiscountMonth int // 1-12

	// Savings
	MaxSavings               float64
	AvgSavingsWhenDiscounted float64

	// Synthesized target, nil until labeled
	GoodBuyTime *int
}

// Column describes one column of the feature table.
type Column struct {
	Name    string
	Numeric bool
	value   func(r *FeatureRecord) float64
	text    func(r *FeatureRecord) string
}

// Value returns the numeric value of the column for r. Non-numeric columns return 0.
func (c Column) Value(r *FeatureRecord) float64 {
	if c.value == nil {
		return 0
	}
	return c.value(r)
}

// Text returns the CSV rendering of the column for r.
func (c Column) Text(r *FeatureRecord) string {
	if c.text != nil {
		return c.text(r)
	}
	return formatFloat(c.value(r))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func num(name string, f func(r *FeatureRecord) float64) Column {
	return Column{Name: name, Numeric: true, value: f}
}

func count(name string, f func(r *FeatureRecord) int) Column {
	return Column{
		Name:    name,
		Numeric: true,
		value:   func(r *FeatureRecord) float64 { return float64(f(r)) },
		text:    func(r *FeatureRecord) string { return strconv.Itoa(f(r)) },
	}
}

var featureColumns = []Column{
	{
		Name:    "app_id",
		Numeric: true,
		value:   func(r *FeatureRecord) float64 { return float64(r.AppID) },
		text:    func(r *FeatureRecord) string { return strconv.FormatInt(r.AppID, 10) },
	},
	{Name: "game_name", text: func(r *FeatureRecord) string { return r.GameName }},
	{Name: "game_type", text: func(r *FeatureRecord) string { return r.GameType }},
	{
		Name:    "is_free_to_play",
		Numeric: true,
		value:   func(r *FeatureRecord) float64 { return boolFloat(r.IsFreeToPlay) },
		text:    func(r *FeatureRecord) string { return strconv.Itoa(int(boolFloat(r.IsFreeToPlay))) },
	},
	count("release_year", func(r *FeatureRecord) int { return r.ReleaseYear }),
	num("avg_initial_price", func(r *FeatureRecord) float64 { return r.AvgInitialPrice }),
	num("min_initial_price", func(r *FeatureRecord) float64 { return r.MinInitialPrice }),
	num("max_initial_price", func(r *FeatureRecord) float64 { return r.MaxInitialPrice }),
	num("price_volatility", func(r *FeatureRecord) float64 { return r.PriceVolatility }),
	num("avg_final_price", func(r *FeatureRecord) float64 { return r.AvgFinalPrice }),
	num("min_final_price", func(r *FeatureRecord) float64 { return r.MinFinalPrice }),
	num("max_final_price", func(r *FeatureRecord) float64 { return r.MaxFinalPrice }),
	num("avg_discount", func(r *FeatureRecord) float64 { return r.AvgDiscount }),
	num("max_discount", func(r *FeatureRecord) float64 { return r.MaxDiscount }),
	num("discount_frequency", func(r *FeatureRecord) float64 { return r.DiscountFrequency }),
	count("total_discount_days", func(r *FeatureRecord) int { return r.TotalDiscountDays }),
	count("total_observation_days", func(r *FeatureRecord) int { return r.TotalObservationDays }),
	num("price_trend", func(r *FeatureRecord) float64 { return r.PriceTrend }),
	num("seasonal_discount_pattern", func(r *FeatureRecord) float64 { return r.SeasonalDiscountPattern }),
	count("best_discount_month", func(r *FeatureRecord) int { return r.BestDiscountMonth }),
	count("worst_discount_month", func(r *FeatureRecord) int { return r.WorstDiscountMonth }),
	num("max_savings", func(r *FeatureRecord) float64 { return r.MaxSavings }),
	num("avg_savings_when_discounted", func(r *FeatureRecord) float64 { return r.AvgSavingsWhenDiscounted }),
	{
		Name:    LabelColumn,
		Numeric: true,
		value: func(r *FeatureRecord) float64 {
			if r.GoodBuyTime == nil {
				return 0
			}
			return float64(*r.GoodBuyTime)
		},
		text: func(r *FeatureRecord) string {
			if r.GoodBuyTime == nil {
				return ""
			}
			return strconv.Itoa(*r.GoodBuyTime)
		},
	},
}

// FeatureColumns returns the ordered schema of the feature table, label last.
func FeatureColumns() []Column {
	out := make([]Column, len(featureColumns))
	copy(out, featureColumns)
	return out
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// HasLabel reports whether the record has been labeled.
func (r *FeatureRecord) HasLabel() bool {
	return r.GoodBuyTime != nil
}
