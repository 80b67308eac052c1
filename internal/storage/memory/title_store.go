package memory

import (
	"context"
	"sort"
	"sync"

	"steam-price-lab/internal/domain"
	"steam-price-lab/internal/storage"
)

// TitleStore is an in-memory implementation of storage.TitleStore.
type TitleStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Title // keyed by app_id
}

// NewTitleStore creates a new in-memory title store.
func NewTitleStore() *TitleStore {
	return &TitleStore{
		data: make(map[int64]*domain.Title),
	}
}

// InsertBulk adds multiple titles. Fails entire batch on duplicate.
func (s *TitleStore) InsertBulk(_ context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(titles))
	for _, t := range titles {
		if t == nil || t.Name == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.AppID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.AppID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.AppID] = struct{}{}
	}

	for _, t := range titles {
		titleCopy := cloneTitle(t)
		s.data[t.AppID] = titleCopy
	}
	return nil
}

// GetByID retrieves a title by app_id. Returns ErrNotFound if not exists.
func (s *TitleStore) GetByID(_ context.Context, appID int64) (*domain.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[appID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneTitle(t), nil
}

// GetAll retrieves all titles, ordered by app_id ASC.
func (s *TitleStore) GetAll(_ context.Context) ([]*domain.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Title, 0, len(s.data))
	for _, t := range s.data {
		result = append(result, cloneTitle(t))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AppID < result[j].AppID
	})
	return result, nil
}

// cloneTitle copies t including its pointer fields.
func cloneTitle(t *domain.Title) *domain.Title {
	c := *t
	if t.ReleaseDateParsed != nil {
		d := *t.ReleaseDateParsed
		c.ReleaseDateParsed = &d
	}
	if t.ReleaseYear != nil {
		y := *t.ReleaseYear
		c.ReleaseYear = &y
	}
	return &c
}

var _ storage.TitleStore = (*TitleStore)(nil)
