package livedata

import (
	"net/http"
	"time"

	"github.com/railmitra/railmitra/source"
)

// staleAfter is the age beyond which a provider response counts as stale.
const staleAfter = 60 * time.Minute

// classifyFreshness derives freshness from the response Date header.
// Missing or unparsable headers classify as unknown.
func classifyFreshness(headers http.Header, now time.Time) source.Freshness {
	if headers == nil {
		return source.FreshnessUnknown
	}
	dateHeader := headers.Get("Date")
	if dateHeader == "" {
		return source.FreshnessUnknown
	}
	responseTime, err := http.ParseTime(dateHeader)
	if err != nil {
		return source.FreshnessUnknown
	}
	if now.Sub(responseTime) > staleAfter {
		return source.FreshnessStale
	}
	return source.FreshnessFresh
}
