// Package links retrieves official reference URLs from the live-source
// index, both as a standalone source and as supplementary material for
// other modules' answers.
package links

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/railmitra/railmitra/source"
	"github.com/railmitra/railmitra/vector"
)

const (
	// DefaultCount is the number of links returned when the query names none.
	DefaultCount = 2
	// MaxCount caps a user-requested link count.
	MaxCount = 10
	// searchK over-fetches so URL deduplication still fills the cap.
	searchK = 2000
)

// Link is one reference URL with its provenance.
type Link struct {
	URL        string
	Authority  string
	Similarity float64
}

// Retriever wraps the live-source index.
type Retriever struct {
	store    vector.Store
	embedder vector.Embedder
}

// NewRetriever creates a link retriever over the live-source index.
func NewRetriever(store vector.Store, embedder vector.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns up to topK distinct links, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Link, error) {
	if topK <= 0 {
		topK = DefaultCount
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.store.Search(ctx, queryVec, searchK)
	if err != nil {
		return nil, fmt.Errorf("link search: %w", err)
	}

	seen := make(map[string]bool)
	var links []Link
	for _, hit := range hits {
		url := hit.Meta.SourcePath
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, Link{
			URL:        url,
			Authority:  hit.Meta.Authority,
			Similarity: float64(hit.Score),
		})
		if len(links) >= topK {
			break
		}
	}
	return links, nil
}

// Answer implements the link-only source: the requested count is parsed from
// the query and the result is a bare URL list.
func (r *Retriever) Answer(ctx context.Context, query string) (*source.Result, error) {
	requested := ExtractCount(query)
	found, err := r.Retrieve(ctx, query, requested)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return source.Declined(source.StatusNothing), nil
	}

	urls := make([]string, 0, len(found))
	for _, l := range found {
		urls = append(urls, l.URL)
	}
	return &source.Result{
		Links:     urls,
		HasAnswer: true,
		Meta: source.Meta{
			Status:    source.StatusOK,
			Requested: requested,
			Returned:  len(urls),
		},
	}, nil
}

var countPattern = regexp.MustCompile(`\b(\d+)\b`)

// ExtractCount reads the first standalone integer in the query as the
// requested link count, defaulting to DefaultCount and capped at MaxCount.
func ExtractCount(query string) int {
	match := countPattern.FindStringSubmatch(query)
	if match == nil {
		return DefaultCount
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return DefaultCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}
