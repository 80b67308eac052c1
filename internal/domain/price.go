package domain

import "time"

// RawPriceRow is one row of PriceHistory/<appid>.csv as read from disk.
// Nil pointers are missing cells.
type RawPriceRow struct {
	Date         *string
	InitialPrice *float64
	FinalPrice   *float64
	Discount     *float64 // percentage 0-100
}

// CompleteRow reports whether every field of the row is present.
func (r RawPriceRow) CompleteRow() bool {
	return r.Date != nil && r.InitialPrice != nil && r.FinalPrice != nil && r.Discount != nil
}

// PriceRow is a complete raw price row that survived cleaning.
type PriceRow struct {
	Date         string
	InitialPrice float64
	FinalPrice   float64
	Discount     float64
}

// PriceObservation is a single dated price point of a title.
// Corresponds to price_observations table in ClickHouse.
type PriceObservation struct {
	AppID        int64     // owning title
	Date         time.Time // observation date (UTC)
	InitialPrice float64   // list price
	FinalPrice   float64   // price after discount
	Discount     float64   // discount percentage 0-100

	// Calendar fields derived from Date
	Year      int
	Month     int // 1-12
	DayOfWeek int // 0=Monday ... 6=Sunday
	Quarter   int // 1-4

	// Monetary fields derived from prices
	SavingsAmount float64 // InitialPrice - FinalPrice
	HasDiscount   bool    // Discount > 0
}

// RawPriceTables maps a title key (file stem of the price file) to its raw rows.
type RawPriceTables map[string][]RawPriceRow

// PriceTables maps a title key to its cleaned rows.
type PriceTables map[string][]PriceRow

// SortedKeys returns the map keys in lexical order.
func (p PriceTables) SortedKeys() []string {
	return sortedKeys(p)
}

// PriceSeries maps a title key to its observations.
// Keys are opaque strings convertible to Title.AppID.
type PriceSeries map[string][]PriceObservation

// SortedKeys returns the map keys in lexical order.
func (p PriceSeries) SortedKeys() []string {
	return sortedKeys(p)
}

// SortedKeys returns the map keys in lexical order.
func (p RawPriceTables) SortedKeys() []string {
	return sortedKeys(p)
}

// Clone returns a deep copy of the series map.
func (p PriceSeries) Clone() PriceSeries {
	out := make(PriceSeries, len(p))
	for k, obs := range p {
		cp := make([]PriceObservation, len(obs))
		copy(cp, obs)
		out[k] = cp
	}
	return out
}
