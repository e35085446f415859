package livedata

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/railmitra/railmitra/lookup"
)

// resolver turns user-mentioned names into canonical codes, using the static
// tables first and the provider's search-by-name operation as fallback for
// stations.
type resolver struct {
	tables *lookup.Tables
	api    API
}

// trainNumber accepts 5-digit identifiers as-is, otherwise consults the
// static train table.
func (r *resolver) trainNumber(value string) string {
	clean := lookup.Normalize(value)
	if clean == "" {
		return ""
	}
	if len(clean) == 5 && isDigits(clean) {
		return clean
	}
	if number, ok := r.tables.Train(clean); ok {
		return number
	}
	return ""
}

// stationCode resolves via the static table, falling back to the search API.
func (r *resolver) stationCode(ctx context.Context, name string) string {
	clean := lookup.Normalize(name)
	if clean == "" {
		return ""
	}
	if code, ok := r.tables.Station(clean); ok {
		return code
	}
	return r.searchStation(ctx, name)
}

// searchStation queries the provider by name, preferring an exact name
// match, then a name-prefix match, then the first returned result.
func (r *resolver) searchStation(ctx context.Context, name string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(name), " station", ""))
	if clean == "" {
		return ""
	}
	data, _, err := r.api.Call(ctx, "/api/v1/searchStation", map[string]string{"query": clean})
	if err != nil || data == nil {
		return ""
	}

	var stations []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &stations); err != nil || len(stations) == 0 {
		return ""
	}

	for _, s := range stations {
		if strings.ToLower(s.Name) == clean {
			return s.Code
		}
	}
	for _, s := range stations {
		if strings.HasPrefix(strings.ToLower(s.Name), clean) {
			return s.Code
		}
	}
	return stations[0].Code
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// apiDateFormat is the provider's expected journey date layout (dd-mm-yyyy).
const apiDateFormat = "02-01-2006"

// Non-padded variants accept user-typed single-digit days and months.
var acceptedDateFormats = []string{
	"02-01-2006", "2006-01-02", "02/01/2006",
	"2-1-2006", "2006-1-2", "2/1/2006",
}

// normalizeDate converts a user-supplied date to the provider layout;
// unrecognized formats yield "".
func normalizeDate(raw string) string {
	for _, layout := range acceptedDateFormats {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.Format(apiDateFormat)
		}
	}
	return ""
}
