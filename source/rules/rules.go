// Package rules answers queries strictly from ranked rule passages.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/retrieval"
	"github.com/railmitra/railmitra/source"
)

const systemPrompt = `You are a railway rules assistant.
You must answer the user question ONLY if the provided railway rules clearly and directly contain the answer.
Do not use any information outside the given rules.
Do not speculate or infer missing details.
If the rules do not clearly answer the question, do not attempt to answer.`

// acceptThreshold is the confidence below which a non-empty answer is still
// reported as a non-answer, deferring the decision to the orchestrator.
const acceptThreshold = 0.45

// Tokenizer counts prompt tokens so the grounded context can be budgeted.
type Tokenizer interface {
	CountTokens(text string) int
}

// Retriever supplies ranked rule candidates for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]retrieval.Candidate, error)
}

// Config controls the answerer.
type Config struct {
	Temperature float64
	// ContextTokenBudget caps the grounded context; 0 disables budgeting.
	ContextTokenBudget int
}

// DefaultConfig returns the default rule-answering configuration.
func DefaultConfig() Config {
	return Config{
		Temperature:        0.2,
		ContextTokenBudget: 6000,
	}
}

// Option customizes answerer config.
type Option func(*Config)

// WithContextTokenBudget caps the grounded context token count.
func WithContextTokenBudget(n int) Option {
	return func(cfg *Config) {
		cfg.ContextTokenBudget = n
	}
}

// Answerer builds grounded prompts from ranked candidates and asks the LLM
// to answer strictly from them.
type Answerer struct {
	engine    Retriever
	llm       llm.Client
	tokenizer Tokenizer
	cfg       Config
	logger    *slog.Logger
}

// New creates an Answerer. tokenizer may be nil; budgeting is skipped then.
func New(engine Retriever, client llm.Client, tokenizer Tokenizer, opts ...Option) *Answerer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Answerer{
		engine:    engine,
		llm:       client,
		tokenizer: tokenizer,
		cfg:       cfg,
		logger:    logging.WithComponent("rules"),
	}
}

// Answer retrieves candidates and produces a grounded answer. The confidence
// estimate always comes from the full candidate set, regardless of what the
// model actually used.
func (a *Answerer) Answer(ctx context.Context, query string) (*source.Result, error) {
	candidates, err := a.engine.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve rules: %w", err)
	}
	if len(candidates) == 0 {
		return &source.Result{
			Meta: source.Meta{Status: source.StatusNoAnswer, Confidence: 0.0},
		}, nil
	}

	grounded := a.buildContext(candidates)
	userPrompt := fmt.Sprintf(
		"User question:\n%s\n\nRelevant railway rules:\n%s\n\nInstructions:\n- Answer strictly using the rules above.\n- Do not add external knowledge.\n",
		query, grounded)

	answer, err := a.llm.Complete(ctx, &llm.Request{
		System:      systemPrompt,
		User:        userPrompt,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("rules completion: %w", err)
	}
	answer = strings.TrimSpace(answer)

	confidence := retrieval.EstimateConfidence(candidates)
	if answer == "" {
		return &source.Result{
			Meta: source.Meta{Status: source.StatusNoAnswer, Confidence: confidence},
		}, nil
	}

	hasAnswer := confidence >= acceptThreshold
	status := source.StatusOK
	if !hasAnswer {
		status = source.StatusNoAnswer
	}
	a.logger.Debug("rule answer produced", "confidence", confidence, "accepted", hasAnswer)

	return &source.Result{
		Answer:    answer,
		HasAnswer: hasAnswer,
		Meta: source.Meta{
			Status:     status,
			Confidence: confidence,
			Citations:  extractCitations(candidates),
			RuleTypes:  distinctRuleTypes(candidates),
		},
	}, nil
}

// buildContext enumerates each candidate with its provenance, in final-score
// order, stopping when the token budget would be exceeded. At least one
// block is always kept.
func (a *Answerer) buildContext(candidates []retrieval.Candidate) string {
	var blocks []string
	used := 0
	for i, c := range candidates {
		block := fmt.Sprintf(
			"[Source %d]\nDocument: %s\nAuthority: %s\nPage: %d, Section: %d\nText:\n%s\n",
			i+1, c.SourcePath, c.Authority, c.Page, c.Section, c.Text)
		if a.tokenizer != nil && a.cfg.ContextTokenBudget > 0 && len(blocks) > 0 {
			cost := a.tokenizer.CountTokens(block)
			if used+cost > a.cfg.ContextTokenBudget {
				break
			}
			used += cost
		} else if a.tokenizer != nil {
			used += a.tokenizer.CountTokens(block)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func extractCitations(candidates []retrieval.Candidate) []source.Citation {
	citations := make([]source.Citation, 0, len(candidates))
	for _, c := range candidates {
		citations = append(citations, source.Citation{
			SourcePath:    c.SourcePath,
			Authority:     c.Authority,
			RuleType:      c.RuleType,
			Page:          c.Page,
			Section:       c.Section,
			EffectiveYear: c.EffectiveYear,
		})
	}
	return citations
}

func distinctRuleTypes(candidates []retrieval.Candidate) []string {
	seen := make(map[string]bool)
	var types []string
	for _, c := range candidates {
		if c.RuleType == "" || seen[c.RuleType] {
			continue
		}
		seen[c.RuleType] = true
		types = append(types, c.RuleType)
	}
	return types
}
