package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
	"steam-price-lab/internal/storage/clickhouse"
	"steam-price-lab/internal/storage/memory"
)

func observation(appID int64, date string, initial, final, discount float64) *domain.PriceObservation {
	d, _ := time.Parse("2006-01-02", date)
	return &domain.PriceObservation{
		AppID:         appID,
		Date:          d,
		InitialPrice:  initial,
		FinalPrice:    final,
		Discount:      discount,
		Year:          d.Year(),
		Month:         int(d.Month()),
		DayOfWeek:     (int(d.Weekday()) + 6) % 7,
		Quarter:       (int(d.Month())-1)/3 + 1,
		SavingsAmount: initial - final,
		HasDiscount:   discount > 0,
	}
}

func TestPriceHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPriceHistoryStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	require.NoError(t, store.InsertBulk(ctx, nil))

	obs := []*domain.PriceObservation{
		observation(10, "2020-03-02", 9.99, 4.99, 50),
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetByAppID(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *obs[0], *got[0])
}

func TestPriceHistoryStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPriceHistoryStore(conn)
	ctx := context.Background()

	obs := []*domain.PriceObservation{observation(10, "2020-03-02", 9.99, 9.99, 0)}
	require.NoError(t, store.InsertBulk(ctx, obs))

	err := store.InsertBulk(ctx, obs)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPriceHistoryStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPriceHistoryStore(conn)
	ctx := context.Background()

	obs := []*domain.PriceObservation{
		observation(10, "2020-03-02", 9.99, 9.99, 0),
		observation(10, "2020-03-02", 9.99, 4.99, 50),
	}
	assert.ErrorIs(t, store.InsertBulk(ctx, obs), storage.ErrDuplicateKey)

	got, err := store.GetByAppID(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceHistoryStore_GetByAppID_Ordered(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPriceHistoryStore(conn)
	ctx := context.Background()

	obs := []*domain.PriceObservation{
		observation(20, "2021-05-01", 19.99, 19.99, 0),
		observation(10, "2020-04-01", 9.99, 7.99, 20),
		observation(10, "2020-03-01", 9.99, 9.99, 0),
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetByAppID(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Before(got[1].Date))
	assert.InDelta(t, 2.0, got[1].SavingsAmount, 1e-9)
	assert.True(t, got[1].HasDiscount)

	ids, err := store.ListAppIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, ids)
}

func TestPriceHistoryStore_CatalogRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	titles := memory.NewTitleStore()
	prices := clickhouse.NewPriceHistoryStore(conn)

	catalog := &domain.Catalog{
		Titles: []domain.Title{{AppID: 10, Type: "game", Name: "Alpha"}},
		Prices: domain.PriceSeries{
			"10": {*observation(10, "2020-03-01", 9.99, 9.99, 0), *observation(10, "2020-04-01", 9.99, 4.99, 50)},
		},
	}
	require.NoError(t, storage.SaveCatalog(ctx, titles, prices, catalog))

	loaded, err := storage.LoadCatalog(ctx, titles, prices)
	require.NoError(t, err)
	require.Contains(t, loaded.Prices, "10")
	assert.Equal(t, catalog.Prices["10"], loaded.Prices["10"])
}
