package memory

import (
	"context"
	"sort"
	"sync"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.FeatureRecord // keyed by app_id
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[int64]*domain.FeatureRecord),
	}
}

// InsertBulk adds multiple records. Fails entire batch on duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, records []*domain.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.AppID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.AppID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.AppID] = struct{}{}
	}

	for _, r := range records {
		s.data[r.AppID] = cloneFeature(r)
	}
	return nil
}

// GetByID retrieves a record by app_id. Returns ErrNotFound if not exists.
func (s *FeatureStore) GetByID(_ context.Context, appID int64) (*domain.FeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[appID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneFeature(r), nil
}

// GetAll retrieves all records, ordered by app_id ASC.
func (s *FeatureStore) GetAll(_ context.Context) ([]*domain.FeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FeatureRecord, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, cloneFeature(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AppID < result[j].AppID
	})
	return result, nil
}

func cloneFeature(r *domain.FeatureRecord) *domain.FeatureRecord {
	c := *r
	if r.GoodBuyTime != nil {
		label := *r.GoodBuyTime
		c.GoodBuyTime = &label
	}
	return &c
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
