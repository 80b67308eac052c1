package clickhouse

import (
	"context"
	"fmt"
	"time"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

type obsKey struct {
	appID int64
	date  int64 // unix ms
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate (app_id, date).
// MergeTree does not enforce keys, so duplicates are checked before the batch is sent.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) (err error) {
	if len(obs) == 0 {
		return nil
	}
	defer func(start time.Time) { s.conn.observe("insert_observations", start, err) }(time.Now())

	// Check for intra-batch duplicates
	seen := make(map[obsKey]struct{}, len(obs))
	var appIDs []int64
	apps := make(map[int64]struct{})
	for _, o := range obs {
		if o == nil || o.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := obsKey{o.AppID, o.Date.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		if _, ok := apps[o.AppID]; !ok {
			apps[o.AppID] = struct{}{}
			appIDs = append(appIDs, o.AppID)
		}
	}

	// Check for duplicates against existing DB rows
	for _, id := range appIDs {
		existing, err := s.storedDates(ctx, id)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, ms := range existing {
			if _, dup := seen[obsKey{id, ms}]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			app_id, date, initial_price, final_price, discount,
			year, month, day_of_week, quarter, savings_amount, has_discount
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		err = batch.Append(
			o.AppID, o.Date.UTC(), o.InitialPrice, o.FinalPrice, o.Discount,
			uint16(o.Year), uint8(o.Month), uint8(o.DayOfWeek), uint8(o.Quarter),
			o.SavingsAmount, boolToUInt8(o.HasDiscount),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAppID retrieves all observations for a title, ordered by date ASC.
func (s *PriceHistoryStore) GetByAppID(ctx context.Context, appID int64) (_ []*domain.PriceObservation, err error) {
	defer func(start time.Time) { s.conn.observe("select_observations", start, err) }(time.Now())

	query := `
		SELECT app_id, date, initial_price, final_price, discount,
			year, month, day_of_week, quarter, savings_amount, has_discount
		FROM price_observations
		WHERE app_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("query by app id: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// ListAppIDs returns every app_id with at least one observation, ascending.
func (s *PriceHistoryStore) ListAppIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT app_id FROM price_observations ORDER BY app_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list app ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan app id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app ids: %w", err)
	}
	return ids, nil
}

// storedDates returns the stored observation dates of appID as unix ms.
func (s *PriceHistoryStore) storedDates(ctx context.Context, appID int64) ([]int64, error) {
	rows, err := s.conn.Query(ctx, `SELECT date FROM price_observations WHERE app_id = ?`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d.UnixMilli())
	}
	return out, rows.Err()
}

// scanObservations scans multiple rows.
func scanObservations(rows chRows) ([]*domain.PriceObservation, error) {
	var obs []*domain.PriceObservation

	for rows.Next() {
		var o domain.PriceObservation
		var year uint16
		var month, dayOfWeek, quarter, hasDiscount uint8

		err := rows.Scan(
			&o.AppID, &o.Date, &o.InitialPrice, &o.FinalPrice, &o.Discount,
			&year, &month, &dayOfWeek, &quarter, &o.SavingsAmount, &hasDiscount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price observation row: %w", err)
		}

		o.Date = o.Date.UTC()
		o.Year = int(year)
		o.Month = int(month)
		o.DayOfWeek = int(dayOfWeek)
		o.Quarter = int(quarter)
		o.HasDiscount = hasDiscount == 1
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price observation rows: %w", err)
	}

	return obs, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
