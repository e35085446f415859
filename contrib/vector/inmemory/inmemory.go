package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/railmitra/railmitra/vector"
)

// InMemoryStore implements vector.Store using in-memory storage
type InMemoryStore struct {
	records map[string]*vector.Record
	mu      sync.RWMutex
}

// NewInMemoryStore creates a new in-memory vector store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*vector.Record),
	}
}

// Add inserts a record into the store
func (s *InMemoryStore) Add(ctx context.Context, rec *vector.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("record vector cannot be empty")
	}

	s.records[rec.ID] = rec
	return nil
}

// Search finds records similar to the query vector
func (s *InMemoryStore) Search(ctx context.Context, queryVector []float32, topK int) ([]vector.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	matches := make([]vector.Match, 0, len(s.records))
	for _, rec := range s.records {
		if len(rec.Vector) != len(queryVector) {
			continue
		}
		matches = append(matches, vector.Match{
			ID:    rec.ID,
			Score: vector.CosineSimilarity(queryVector, rec.Vector),
			Meta:  rec.Meta,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of stored records
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// Clear removes all records
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*vector.Record)
	return nil
}
