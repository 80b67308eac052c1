package features

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-price-lab/internal/domain"
)

func series(appID int64, n int, discount float64) []domain.PriceObservation {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.PriceObservation, n)
	for i := range out {
		d := start.AddDate(0, 0, i*20)
		out[i] = domain.PriceObservation{
			AppID:         appID,
			Date:          d,
			Month:         int(d.Month()),
			InitialPrice:  10,
			FinalPrice:    10 - discount/10,
			Discount:      discount,
			SavingsAmount: discount / 10,
			HasDiscount:   discount > 0,
		}
	}
	return out
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Titles: []domain.Title{
			{AppID: 30, Name: "thirty", Type: "game"},
			{AppID: 10, Name: "ten", Type: "game"},
			{AppID: 40, Name: "no prices", Type: "dlc"},
		},
		Prices: domain.PriceSeries{
			"10":     series(10, 12, 0),
			"30":     series(30, 12, 50),
			"20":     series(20, 12, 25), // no title
			"banana": series(0, 12, 25),  // not an id
		},
	}
}

func TestAggregate_InnerJoin(t *testing.T) {
	records, report, err := NewAggregator(1).Aggregate(context.Background(), testCatalog())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(10), records[0].AppID)
	assert.Equal(t, "ten", records[0].GameName)
	assert.Equal(t, int64(30), records[1].AppID)
	assert.InDelta(t, 1.0, records[1].DiscountFrequency, 1e-12)

	assert.Equal(t, 2, report.Joined)
	assert.Equal(t, []string{"20", "banana"}, report.Unjoined)
}

func TestAggregate_ParallelMatchesSequential(t *testing.T) {
	c := &domain.Catalog{Prices: domain.PriceSeries{}}
	for id := int64(1); id <= 50; id++ {
		c.Titles = append(c.Titles, domain.Title{AppID: id, Name: "t"})
		c.Prices[strconv.FormatInt(id, 10)] = series(id, 11+int(id%5), float64(id%4)*10)
	}

	seq, _, err := NewAggregator(1).Aggregate(context.Background(), c)
	require.NoError(t, err)
	par, _, err := NewAggregator(8).Aggregate(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestAggregate_EmptyJoin(t *testing.T) {
	c := &domain.Catalog{
		Titles: []domain.Title{{AppID: 1, Name: "a"}},
		Prices: domain.PriceSeries{"2": series(2, 12, 0)},
	}

	records, _, err := NewAggregator(2).Aggregate(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAggregate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewAggregator(1).Aggregate(ctx, testCatalog())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_OneRecordPerAppID(t *testing.T) {
	c := testCatalog()
	c.Prices["010"] = series(10, 12, 30)

	records, report, err := NewAggregator(4).Aggregate(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(10), records[0].AppID)
	// "010" sorts before "10" and wins the join
	assert.InDelta(t, 1.0, records[0].DiscountFrequency, 1e-12)
	assert.Equal(t, []string{"10"}, report.Duplicates)
	assert.Equal(t, 2, report.Joined)
}
