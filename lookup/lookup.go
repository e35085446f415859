package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound indicates that a name has no entry in the table.
var ErrNotFound = errors.New("lookup: name not found")

// Tables holds the static name-to-code maps built offline. Both maps are
// keyed by normalized (lower-cased, trimmed) names and are read-only for
// the lifetime of the process.
type Tables struct {
	stations map[string]string
	trains   map[string]string
}

// New builds Tables from raw maps, normalizing every key.
func New(stations, trains map[string]string) *Tables {
	t := &Tables{
		stations: make(map[string]string, len(stations)),
		trains:   make(map[string]string, len(trains)),
	}
	for name, code := range stations {
		t.stations[Normalize(name)] = code
	}
	for name, number := range trains {
		t.trains[Normalize(name)] = number
	}
	return t
}

// Normalize lower-cases and trims a user-mentioned name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Station resolves a station name to its code.
func (t *Tables) Station(name string) (string, bool) {
	code, ok := t.stations[Normalize(name)]
	return code, ok
}

// Train resolves a train name to its number.
func (t *Tables) Train(name string) (string, bool) {
	number, ok := t.trains[Normalize(name)]
	return number, ok
}

// Stations returns the number of station entries.
func (t *Tables) Stations() int { return len(t.stations) }

// Trains returns the number of train entries.
func (t *Tables) Trains() int { return len(t.trains) }

// LoadFile reads a JSON object of name->code pairs, the format produced by
// the offline lookup build.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup %s: %w", path, err)
	}
	out := make(map[string]string)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse lookup %s: %w", path, err)
	}
	return out, nil
}

// LoadFiles builds Tables from two JSON lookup files.
func LoadFiles(stationsPath, trainsPath string) (*Tables, error) {
	stations, err := LoadFile(stationsPath)
	if err != nil {
		return nil, err
	}
	trains, err := LoadFile(trainsPath)
	if err != nil {
		return nil, err
	}
	return New(stations, trains), nil
}
