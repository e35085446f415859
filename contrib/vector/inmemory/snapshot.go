package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/railmitra/railmitra/vector"
)

// LoadSnapshot reads a JSON array of records produced by the offline index
// build and loads it into a fresh in-memory store. Vectors are expected to be
// pre-normalized; each record must carry an ID and a non-empty vector.
func LoadSnapshot(ctx context.Context, path string) (*InMemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var records []vector.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	store := NewInMemoryStore()
	for i := range records {
		if err := store.Add(ctx, &records[i]); err != nil {
			return nil, fmt.Errorf("load record %q: %w", records[i].ID, err)
		}
	}
	return store, nil
}
