package livedata

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/railmitra/railmitra/source"
)

func TestTrainNumberPassthrough(t *testing.T) {
	r := &resolver{tables: testTables(), api: &stubAPI{}}

	if got := r.trainNumber("12951"); got != "12951" {
		t.Fatalf("five-digit number should pass through, got %q", got)
	}
	if got := r.trainNumber("Rajdhani Express"); got != "12951" {
		t.Fatalf("named train should resolve via the table, got %q", got)
	}
	if got := r.trainNumber("129"); got != "" {
		t.Fatalf("short numeric value must not resolve, got %q", got)
	}
	if got := r.trainNumber("unknown express"); got != "" {
		t.Fatalf("unknown name must not resolve, got %q", got)
	}
	if got := r.trainNumber("  "); got != "" {
		t.Fatalf("blank value must not resolve, got %q", got)
	}
}

func TestStationCodeTableFirst(t *testing.T) {
	api := &stubAPI{}
	r := &resolver{tables: testTables(), api: api}

	if got := r.stationCode(context.Background(), "New Delhi"); got != "NDLS" {
		t.Fatalf("expected NDLS from the table, got %q", got)
	}
	if len(api.calls) != 0 {
		t.Fatalf("table hit must not reach the provider")
	}
}

func TestSearchStationMatching(t *testing.T) {
	payload := json.RawMessage(`[
		{"name": "Kanpur Anwarganj", "code": "CPA"},
		{"name": "Kanpur Central", "code": "CNB"}
	]`)
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v1/searchStation": {data: payload},
	}}
	r := &resolver{tables: testTables(), api: api}

	// Exact name match wins over earlier entries.
	if got := r.stationCode(context.Background(), "Kanpur Central"); got != "CNB" {
		t.Fatalf("expected exact match CNB, got %q", got)
	}
	// Prefix match when no exact name exists.
	if got := r.stationCode(context.Background(), "Kanpur A"); got != "CPA" {
		t.Fatalf("expected prefix match CPA, got %q", got)
	}
	// Neither exact nor prefix: first result.
	if got := r.stationCode(context.Background(), "Kanpur Junction"); got != "CPA" {
		t.Fatalf("expected first result CPA, got %q", got)
	}
}

func TestSearchStationStripsStationSuffix(t *testing.T) {
	payload := json.RawMessage(`[{"name": "Agra Cantt", "code": "AGC"}]`)
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v1/searchStation": {data: payload},
	}}
	r := &resolver{tables: testTables(), api: api}

	if got := r.stationCode(context.Background(), "Agra Cantt Station"); got != "AGC" {
		t.Fatalf("expected AGC, got %q", got)
	}
	if q := api.calls[0].params["query"]; q != "agra cantt" {
		t.Fatalf("expected suffix stripped in query, got %q", q)
	}
}

func TestSearchStationEmptyResult(t *testing.T) {
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v1/searchStation": {data: json.RawMessage(`[]`)},
	}}
	r := &resolver{tables: testTables(), api: api}

	if got := r.stationCode(context.Background(), "Nowhere"); got != "" {
		t.Fatalf("empty search must not resolve, got %q", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"31-08-2026", "31-08-2026"},
		{"2026-08-31", "31-08-2026"},
		{"31/08/2026", "31-08-2026"},
		{" 31-08-2026 ", "31-08-2026"},
		{"5-3-2026", "05-03-2026"},
		{"2026-3-5", "05-03-2026"},
		{"5/3/2026", "05-03-2026"},
		{"tomorrow", ""},
		{"08-31-2026", ""},
	}
	for _, tc := range cases {
		if got := normalizeDate(tc.in); got != tc.want {
			t.Fatalf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyFreshness(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	recent := http.Header{}
	recent.Set("Date", now.Add(-30*time.Minute).Format(http.TimeFormat))
	if got := classifyFreshness(recent, now); got != source.FreshnessFresh {
		t.Fatalf("expected fresh, got %s", got)
	}

	old := http.Header{}
	old.Set("Date", now.Add(-2*time.Hour).Format(http.TimeFormat))
	if got := classifyFreshness(old, now); got != source.FreshnessStale {
		t.Fatalf("expected stale, got %s", got)
	}

	if got := classifyFreshness(nil, now); got != source.FreshnessUnknown {
		t.Fatalf("missing headers should be unknown, got %s", got)
	}

	garbled := http.Header{}
	garbled.Set("Date", "yesterday-ish")
	if got := classifyFreshness(garbled, now); got != source.FreshnessUnknown {
		t.Fatalf("unparsable header should be unknown, got %s", got)
	}
}
