package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[priceKey]*domain.PriceObservation
}

type priceKey struct {
	appID int64
	date  time.Time
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[priceKey]*domain.PriceObservation),
	}
}

// InsertBulk adds multiple observations. Fails entire batch on duplicate.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[priceKey]struct{}, len(obs))

	for _, o := range obs {
		if o == nil || o.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := priceKey{appID: o.AppID, date: o.Date.UTC()}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range obs {
		obsCopy := *o
		s.data[priceKey{appID: o.AppID, date: o.Date.UTC()}] = &obsCopy
	}
	return nil
}

// GetByAppID retrieves all observations for a title, ordered by date ASC.
func (s *PriceHistoryStore) GetByAppID(_ context.Context, appID int64) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for k, o := range s.data {
		if k.appID == appID {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// ListAppIDs returns every app_id with at least one observation, ascending.
func (s *PriceHistoryStore) ListAppIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	for k := range s.data {
		seen[k.appID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
