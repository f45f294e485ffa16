package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/backend/internal/domain"
)

// MemoryMealStore is a thread-safe in-memory meal repository. It stands in
// for the document database in single-process deployments and tests; the
// pipeline never depends on its success.
type MemoryMealStore struct {
	records map[string]domain.MealRecord
	byUser  map[string][]string
	mutex   sync.RWMutex
}

// NewMemoryMealStore creates an empty meal store.
func NewMemoryMealStore() *MemoryMealStore {
	return &MemoryMealStore{
		records: make(map[string]domain.MealRecord),
		byUser:  make(map[string][]string),
	}
}

// Save persists a meal record, assigning an id and timestamp when missing.
func (s *MemoryMealStore) Save(ctx context.Context, record *domain.MealRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, exists := s.records[record.ID]; !exists {
		s.byUser[record.UserID] = append(s.byUser[record.UserID], record.ID)
	}
	s.records[record.ID] = *record

	return nil
}

// GetByID returns one meal record.
func (s *MemoryMealStore) GetByID(ctx context.Context, id string) (*domain.MealRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrMealNotFound
	}
	return &record, nil
}

// ListByUser returns a user's meals, newest first.
func (s *MemoryMealStore) ListByUser(ctx context.Context, userID string) ([]*domain.MealRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := s.byUser[userID]
	out := make([]*domain.MealRecord, 0, len(ids))
	for _, id := range ids {
		record := s.records[id]
		out = append(out, &record)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// MemoryImageStore keeps uploaded image bytes in memory and hands back
// opaque retrievable URLs. Object-storage stand-in for tests and
// single-process deployments.
type MemoryImageStore struct {
	objects map[string][]byte
	mutex   sync.RWMutex
}

// NewMemoryImageStore creates an empty image store.
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{objects: make(map[string][]byte)}
}

// Put stores image bytes under key and returns a retrievable URL.
func (s *MemoryImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored

	return fmt.Sprintf("memory://images/%s", key), nil
}

// Get returns stored image bytes.
func (s *MemoryImageStore) Get(key string) ([]byte, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.objects[key]
	return data, ok
}
