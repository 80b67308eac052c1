package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"steam-price-lab/internal/domain"
)

// SaveCatalog writes cleaned titles and the observations of every series that
// joins a title. Series whose key is not an app_id, has no title, or repeats an
// earlier key's app_id ("7" after "007" in lexical order) are not stored.
func SaveCatalog(ctx context.Context, titles TitleStore, prices PriceHistoryStore, c *domain.Catalog) error {
	ts := make([]*domain.Title, len(c.Titles))
	for i := range c.Titles {
		ts[i] = &c.Titles[i]
	}
	if err := titles.InsertBulk(ctx, ts); err != nil {
		return fmt.Errorf("insert titles: %w", err)
	}

	for _, key := range JoinedKeys(c) {
		series := c.Prices[key]
		obs := make([]*domain.PriceObservation, len(series))
		for i := range series {
			obs[i] = &series[i]
		}
		if err := prices.InsertBulk(ctx, obs); err != nil {
			return fmt.Errorf("insert observations for %s: %w", key, err)
		}
	}
	return nil
}

// LoadCatalog reads every title and every stored series back into a Catalog.
// Series are keyed by the decimal app_id.
func LoadCatalog(ctx context.Context, titles TitleStore, prices PriceHistoryStore) (*domain.Catalog, error) {
	all, err := titles.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load titles: %w", err)
	}

	c := &domain.Catalog{
		Titles: make([]domain.Title, 0, len(all)),
		Prices: make(domain.PriceSeries),
	}
	for _, t := range all {
		c.Titles = append(c.Titles, *t)
	}

	ids, err := prices.ListAppIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price app ids: %w", err)
	}
	for _, id := range ids {
		obs, err := prices.GetByAppID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load observations for %d: %w", id, err)
		}
		series := make([]domain.PriceObservation, len(obs))
		for i, o := range obs {
			series[i] = *o
		}
		c.Prices[strconv.FormatInt(id, 10)] = series
	}
	return c, nil
}

// JoinedKeys returns, in lexical order, the series keys that parse to the app_id
// of a catalog title. Only the first key per app_id is returned.
func JoinedKeys(c *domain.Catalog) []string {
	index := c.TitleIndex()
	seen := make(map[int64]struct{})
	var keys []string
	for _, key := range c.Prices.SortedKeys() {
		appID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		if _, ok := index[appID]; !ok {
			continue
		}
		if _, dup := seen[appID]; dup {
			continue
		}
		seen[appID] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
