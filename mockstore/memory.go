package mockstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Record)}
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.collections[collection]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRecord(records[id]))
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Put(_ context.Context, collection, id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		records = make(map[string]Record)
		s.collections[collection] = records
	}
	records[id] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}
