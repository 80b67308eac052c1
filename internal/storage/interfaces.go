package storage

import (
	"context"

	"steam-price-lab/internal/domain"
)

// TitleStore provides access to titles storage.
type TitleStore interface {
	// InsertBulk adds multiple titles atomically. Fails entire batch on any duplicate app_id.
	InsertBulk(ctx context.Context, titles []*domain.Title) error

	// GetByID retrieves a title by app_id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, appID int64) (*domain.Title, error)

	// GetAll retrieves all titles, ordered by app_id ASC.
	GetAll(ctx context.Context) ([]*domain.Title, error)
}

// PriceHistoryStore provides access to price_observations storage.
type PriceHistoryStore interface {
	// InsertBulk adds multiple observations. Fails entire batch on duplicate (app_id, date).
	InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error

	// GetByAppID retrieves all observations for a title, ordered by date ASC.
	GetByAppID(ctx context.Context, appID int64) ([]*domain.PriceObservation, error)

	// ListAppIDs returns every app_id with at least one observation, ascending.
	ListAppIDs(ctx context.Context) ([]int64, error)
}

// FeatureStore provides access to feature_records storage.
type FeatureStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate app_id.
	InsertBulk(ctx context.Context, records []*domain.FeatureRecord) error

	// GetByID retrieves a record by app_id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, appID int64) (*domain.FeatureRecord, error)

	// GetAll retrieves all records, ordered by app_id ASC.
	GetAll(ctx context.Context) ([]*domain.FeatureRecord, error)
}
