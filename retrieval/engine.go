// Package retrieval turns raw vector-similarity hits over the rules index
// into a reordered, filtered candidate list using domain heuristics, and
// derives a bounded confidence estimate from that list.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/vector"
)

// Candidate is one ranked rule passage. Immutable once returned.
type Candidate struct {
	ID            string
	SourcePath    string
	Authority     string
	RuleType      string
	Priority      int
	EffectiveYear int
	Page          int
	Section       int
	RawSimilarity float64
	FinalScore    float64
	Text          string
}

// Config controls retrieval behaviour.
type Config struct {
	// FinalTopK caps the returned candidate list.
	FinalTopK int
	// OverfetchFactor multiplies FinalTopK for the raw nearest-neighbor fetch.
	OverfetchFactor int
	// SimilarityThreshold discards neighbors below this raw similarity.
	SimilarityThreshold float64
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		FinalTopK:           10,
		OverfetchFactor:     5,
		SimilarityThreshold: 0.30,
	}
}

// Option customizes engine config.
type Option func(*Config)

// WithFinalTopK sets the final candidate cap.
func WithFinalTopK(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.FinalTopK = k
		}
	}
}

// WithSimilarityThreshold sets the raw similarity floor.
func WithSimilarityThreshold(t float64) Option {
	return func(cfg *Config) {
		cfg.SimilarityThreshold = t
	}
}

// Engine wraps the rules index with heuristic re-scoring.
type Engine struct {
	store    vector.Store
	embedder vector.Embedder
	policy   *Policy
	cfg      Config
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine over the rules index.
func NewEngine(store vector.Store, embedder vector.Embedder, policy *Policy, opts ...Option) *Engine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		policy:   policy,
		cfg:      cfg,
		logger:   logging.WithComponent("retrieval"),
	}
}

// Retrieve embeds the query, over-fetches neighbors, filters by the raw
// similarity floor, applies the policy bonuses, and returns the top
// candidates ordered by final score descending. The result is recomputed
// per call; with an unchanged index the output is identical across calls.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]Candidate, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.store.Search(ctx, queryVec, e.cfg.FinalTopK*e.cfg.OverfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	qtype := e.policy.DetectQuestionType(query)
	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		similarity := round4(float64(hit.Score))
		if similarity < e.cfg.SimilarityThreshold {
			continue
		}
		meta := hit.Meta
		finalScore := similarity +
			e.policy.PriorityBonus(meta.Priority) +
			e.policy.RuleMatchBonus(query, meta.RuleType) +
			e.policy.RecencyBonus(meta.EffectiveYear) +
			e.policy.QuestionTypeBonus(qtype, meta.Text)

		candidates = append(candidates, Candidate{
			ID:            hit.ID,
			SourcePath:    meta.SourcePath,
			Authority:     meta.Authority,
			RuleType:      meta.RuleType,
			Priority:      meta.Priority,
			EffectiveYear: meta.EffectiveYear,
			Page:          meta.Page,
			Section:       meta.Section,
			RawSimilarity: similarity,
			FinalScore:    round4(finalScore),
			Text:          meta.Text,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
	if len(candidates) > e.cfg.FinalTopK {
		candidates = candidates[:e.cfg.FinalTopK]
	}

	e.logger.Debug("retrieved rule candidates",
		"question_type", string(qtype),
		"hits", len(hits),
		"kept", len(candidates))
	return candidates, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
