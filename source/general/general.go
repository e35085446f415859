// Package general provides the unconstrained conversational source, gated
// by relevance dominance in module mode and unconditional in failsafe mode.
package general

import (
	"context"
	"log/slog"
	"strings"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/router"
	"github.com/railmitra/railmitra/source"
)

const systemPrompt = `You are a knowledgeable, helpful AI assistant.
You can answer general questions, explain concepts clearly, and respond politely in a conversational manner.
If a question is ambiguous, ask for clarification.
Do not claim access to private, real-time, or restricted systems.`

const (
	// minRelevance is the floor below which module mode always defers.
	minRelevance = 0.30
	// dominanceMargin is how far general relevance must exceed the
	// rule-answering and live-data relevances to answer in module mode.
	dominanceMargin = 0.10

	temperature = 0.6
)

// Mode selects the gating behaviour.
type Mode string

const (
	// ModeModule answers only when the router clearly prefers this source.
	ModeModule Mode = "module"
	// ModeFailsafe answers unconditionally.
	ModeFailsafe Mode = "failsafe"
)

// Source is the general/fallback conversational source.
type Source struct {
	llm    llm.Client
	logger *slog.Logger
}

// New creates a general Source.
func New(client llm.Client) *Source {
	return &Source{
		llm:    client,
		logger: logging.WithComponent("general"),
	}
}

// Answer produces a conversational reply. In module mode it defers unless
// its relevance clears the floor and dominates both the rule-answering and
// live-data relevances; in failsafe mode it always answers.
func (s *Source) Answer(ctx context.Context, query string, route *router.RouteResult, mode Mode) (*source.Result, error) {
	if mode != ModeFailsafe {
		genRel := route.RelevanceOf(router.ModuleGeneral)
		ragRel := route.RelevanceOf(router.ModuleRuleAnswer)
		apiRel := route.RelevanceOf(router.ModuleLiveData)

		if genRel < minRelevance {
			return source.Declined(source.StatusNoAnswer), nil
		}
		if genRel < max(ragRel, apiRel)+dominanceMargin {
			s.logger.Debug("general source deferring",
				"general", genRel, "rules", ragRel, "live", apiRel)
			return source.Declined(source.StatusNoAnswer), nil
		}
	}

	answer, err := s.llm.Complete(ctx, &llm.Request{
		System:      systemPrompt,
		User:        query,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	return &source.Result{
		Answer:    strings.TrimSpace(answer),
		HasAnswer: true,
		Meta: source.Meta{
			Status: source.StatusOK,
			Mode:   string(mode),
		},
	}, nil
}
