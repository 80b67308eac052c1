package domain

// Catalog holds the cleaned title table and the per-title price series.
// A Catalog is treated as immutable once built; stages return new Catalogs.
type Catalog struct {
	Titles []Title
	Prices PriceSeries
}

// TitleIndex maps app_id to the position of the first title with that id.
func (c *Catalog) TitleIndex() map[int64]int {
	idx := make(map[int64]int, len(c.Titles))
	for i, t := range c.Titles {
		if _, ok := idx[t.AppID]; !ok {
			idx[t.AppID] = i
		}
	}
	return idx
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	titles := make([]Title, len(c.Titles))
	copy(titles, c.Titles)
	return &Catalog{Titles: titles, Prices: c.Prices.Clone()}
}
