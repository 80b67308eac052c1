package features

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"steam-price-lab/internal/domain"
)

// Aggregator computes feature records for every joinable title of a catalog.
type Aggregator struct {
	workers int
}

// NewAggregator creates an aggregator. workers <= 1 computes sequentially.
func NewAggregator(workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{workers: workers}
}

// Report lists the series that could not be joined to a title.
type Report struct {
	Joined     int
	Unjoined   []string // series keys without a matching title, lexical order
	Duplicates []string // keys whose app_id an earlier key already joined
}

type job struct {
	key   string
	title domain.Title
	obs   []domain.PriceObservation
}

// Aggregate inner-joins the catalog's series with its titles on app_id and
// returns one record per joined series, ordered by app_id ascending.
// Unjoinable series are skipped. The only error is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, c *domain.Catalog) ([]domain.FeatureRecord, Report, error) {
	var report Report

	index := c.TitleIndex()
	joined := make(map[int64]struct{})
	var jobs []job
	for _, key := range c.Prices.SortedKeys() {
		appID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			report.Unjoined = append(report.Unjoined, key)
			continue
		}
		pos, ok := index[appID]
		if !ok {
			report.Unjoined = append(report.Unjoined, key)
			continue
		}
		if _, dup := joined[appID]; dup {
			report.Duplicates = append(report.Duplicates, key)
			continue
		}
		joined[appID] = struct{}{}
		jobs = append(jobs, job{key: key, title: c.Titles[pos], obs: c.Prices[key]})
	}
	report.Joined = len(jobs)

	records := make([]domain.FeatureRecord, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = Compute(jobs[i].title, jobs[i].obs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AppID < records[j].AppID
	})
	return records, report, nil
}
