// Package router ranks the four answer-producing modules for a query.
package router

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/pkg/logging"
)

// Module identifies one of the four answer-producing strategies.
type Module string

const (
	ModuleRuleAnswer Module = "railway_rag"
	ModuleLiveData   Module = "live_data_apis"
	ModuleGeneral    Module = "general"
	ModuleLinkOnly   Module = "link_answer"
)

// Modules lists every known module in declaration order; absent modules are
// appended to repaired rankings in this order.
var Modules = []Module{ModuleRuleAnswer, ModuleLiveData, ModuleGeneral, ModuleLinkOnly}

// Preference is a router-assigned relevance for one module.
type Preference struct {
	Module    Module  `json:"module"`
	Relevance float64 `json:"relevance"`
}

// RouteResult is the repaired, totally ordered ranking. When Failed is set
// Preferences is empty and the caller must go straight to the failsafe.
type RouteResult struct {
	Failed      bool
	Preferences []Preference
}

// RelevanceOf returns the repaired relevance for a module, 0 when absent.
func (r *RouteResult) RelevanceOf(m Module) float64 {
	for _, p := range r.Preferences {
		if p.Module == m {
			return p.Relevance
		}
	}
	return 0
}

const systemPrompt = `You are a routing system for a multi-module assistant.
Your task is to rank ALL available modules by how suitable they are
for handling the user's input.

Available modules:
- railway_rag : authoritative, static, rule-based railway information such as
               laws, regulations, penalties, permissions, procedures, and
               official policies derived from documents.

- live_data_apis : dynamic or time-sensitive railway information such as
                   live train status, current location, delays, fares,
                   seat availability, PNR status, or other real-time data.

- general : conversational, explanatory, or contextual input such as
            greetings, clarifications, follow-up questions, or general
            explanations that do not require authoritative rules or live data.

- link_answer : providing official railway website links ONLY when the user
                explicitly asks for links, sources, websites, or external
                references, or when they request where to check information.

Rules:
- Rank ALL modules
- Relevance must be between 0.0 and 1.0
- Higher relevance means the module should be tried earlier
- Do NOT explain your reasoning
- Do NOT generate answers
- Respond ONLY in valid JSON

JSON format:
{
  "module_preferences": [
    {"module": "railway_rag", "relevance": 0.0},
    {"module": "live_data_apis", "relevance": 0.0},
    {"module": "general", "relevance": 0.0},
    {"module": "link_answer", "relevance": 0.0}
  ]
}`

// Router asks an LLM to rank modules and repairs the response into a
// canonical RouteResult.
type Router struct {
	llm    llm.Client
	logger *slog.Logger
}

// New creates a Router.
func New(client llm.Client) *Router {
	return &Router{
		llm:    client,
		logger: logging.WithComponent("router"),
	}
}

// RawPreference is one unvalidated ranking entry. Relevance is decoded
// loosely so non-numeric values can be dropped instead of failing the
// whole parse.
type RawPreference struct {
	Module    string `json:"module"`
	Relevance any    `json:"relevance"`
}

// rawResponse mirrors the JSON the model is asked to produce.
type rawResponse struct {
	ModulePreferences []RawPreference `json:"module_preferences"`
}

// Route ranks all modules for the query. A malformed model response is never
// repaired silently: it yields Failed=true with no preferences.
func (r *Router) Route(ctx context.Context, query string) *RouteResult {
	out, err := r.llm.Complete(ctx, &llm.Request{
		System:      systemPrompt,
		User:        query,
		Temperature: 0,
	})
	if err != nil {
		r.logger.Warn("router completion failed", "error", err)
		return &RouteResult{Failed: true}
	}

	parsed, err := llm.DecodeJSON[rawResponse](out)
	if err != nil || parsed.ModulePreferences == nil {
		r.logger.Warn("router response unparsable", "error", err)
		return &RouteResult{Failed: true}
	}

	return &RouteResult{Preferences: Repair(parsed.ModulePreferences)}
}

// Repair validates raw preferences into the canonical ranking: unknown
// modules and non-numeric relevances are dropped, surviving relevances are
// clamped to [0,1], absent modules are appended at 0.0, and the result is
// sorted by relevance descending.
func Repair(raw []RawPreference) []Preference {
	cleaned := make([]Preference, 0, len(Modules))
	seen := make(map[Module]bool, len(Modules))
	for _, item := range raw {
		m := Module(item.Module)
		if !known(m) || seen[m] {
			continue
		}
		rel, ok := toFloat(item.Relevance)
		if !ok {
			continue
		}
		cleaned = append(cleaned, Preference{Module: m, Relevance: clamp01(rel)})
		seen[m] = true
	}
	for _, m := range Modules {
		if !seen[m] {
			cleaned = append(cleaned, Preference{Module: m, Relevance: 0})
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Relevance > cleaned[j].Relevance
	})
	return cleaned
}

func known(m Module) bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
