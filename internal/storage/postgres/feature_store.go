package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// featureColumns is the column order of feature_records used by COPY and SELECT.
var featureColumns = []string{
	"app_id", "game_name", "game_type", "is_free_to_play", "release_year",
	"avg_initial_price", "min_initial_price", "max_initial_price", "price_volatility",
	"avg_final_price", "min_final_price", "max_final_price",
	"avg_discount", "max_discount", "discount_frequency", "total_discount_days",
	"total_observation_days", "price_trend", "seasonal_discount_pattern",
	"best_discount_month", "worst_discount_month",
	"max_savings", "avg_savings_when_discounted", "good_buy_time",
}

// FeatureStore implements storage.FeatureStore using PostgreSQL.
type FeatureStore struct {
	pool *Pool
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(pool *Pool) *FeatureStore {
	return &FeatureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk copies records in one transaction. Fails entire batch on any duplicate.
func (s *FeatureStore) InsertBulk(ctx context.Context, records []*domain.FeatureRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	defer func(start time.Time) { s.pool.observe("copy_features", start, err) }(time.Now())

	rows := make([][]any, len(records))
	for i, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		rows[i] = featureValues(r)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"feature_records"}, featureColumns, pgx.CopyFromRows(rows)); err != nil {
		return translate(err, "copy feature records")
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(err, "commit tx")
	}
	return nil
}

// GetByID retrieves a record by app_id. Returns ErrNotFound if not exists.
func (s *FeatureStore) GetByID(ctx context.Context, appID int64) (*domain.FeatureRecord, error) {
	query := `SELECT ` + selectList() + ` FROM feature_records WHERE app_id = $1`

	r, err := scanFeature(s.pool.QueryRow(ctx, query, appID))
	if err != nil {
		return nil, translate(err, "get feature record by id")
	}
	return r, nil
}

// GetAll retrieves all records ordered by app_id ASC.
func (s *FeatureStore) GetAll(ctx context.Context) (_ []*domain.FeatureRecord, err error) {
	defer func(start time.Time) { s.pool.observe("select_features", start, err) }(time.Now())

	query := `SELECT ` + selectList() + ` FROM feature_records ORDER BY app_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all feature records: %w", err)
	}
	defer rows.Close()

	var result []*domain.FeatureRecord
	for rows.Next() {
		r, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature records: %w", err)
	}
	return result, nil
}

func selectList() string {
	return strings.Join(featureColumns, ", ")
}

func featureValues(r *domain.FeatureRecord) []any {
	return []any{
		r.AppID, r.GameName, r.GameType, r.IsFreeToPlay, int32(r.ReleaseYear),
		r.AvgInitialPrice, r.MinInitialPrice, r.MaxInitialPrice, r.PriceVolatility,
		r.AvgFinalPrice, r.MinFinalPrice, r.MaxFinalPrice,
		r.AvgDiscount, r.MaxDiscount, r.DiscountFrequency, int32(r.TotalDiscountDays),
		int32(r.TotalObservationDays), r.PriceTrend, r.SeasonalDiscountPattern,
		int16(r.BestDiscountMonth), int16(r.WorstDiscountMonth),
		r.MaxSavings, r.AvgSavingsWhenDiscounted, labelValue(r.GoodBuyTime),
	}
}

func labelValue(v *int) *int16 {
	if v == nil {
		return nil
	}
	l := int16(*v)
	return &l
}

// scanFeature scans a single row into FeatureRecord.
func scanFeature(row pgx.Row) (*domain.FeatureRecord, error) {
	var r domain.FeatureRecord
	var label *int16

	err := row.Scan(
		&r.AppID, &r.GameName, &r.GameType, &r.IsFreeToPlay, &r.ReleaseYear,
		&r.AvgInitialPrice, &r.MinInitialPrice, &r.MaxInitialPrice, &r.PriceVolatility,
		&r.AvgFinalPrice, &r.MinFinalPrice, &r.MaxFinalPrice,
		&r.AvgDiscount, &r.MaxDiscount, &r.DiscountFrequency, &r.TotalDiscountDays,
		&r.TotalObservationDays, &r.PriceTrend, &r.SeasonalDiscountPattern,
		&r.BestDiscountMonth, &r.WorstDiscountMonth,
		&r.MaxSavings, &r.AvgSavingsWhenDiscounted, &label,
	)
	if err != nil {
		return nil, err
	}
	if label != nil {
		v := int(*label)
		r.GoodBuyTime = &v
	}

	return &r, nil
}
