package router

import (
	"context"
	"errors"
	"testing"

	"github.com/railmitra/railmitra/llm"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.Request) (string, error) {
	return s.response, s.err
}

func TestRouteParsesValidRanking(t *testing.T) {
	r := New(&stubLLM{response: `{
		"module_preferences": [
			{"module": "live_data_apis", "relevance": 0.9},
			{"module": "railway_rag", "relevance": 0.4},
			{"module": "general", "relevance": 0.2},
			{"module": "link_answer", "relevance": 0.1}
		]
	}`})

	route := r.Route(context.Background(), "where is train 12951 now")
	if route.Failed {
		t.Fatalf("expected successful route, got Failed=true")
	}
	if len(route.Preferences) != len(Modules) {
		t.Fatalf("expected %d preferences, got %d", len(Modules), len(route.Preferences))
	}
	if route.Preferences[0].Module != ModuleLiveData {
		t.Fatalf("expected live data first, got %s", route.Preferences[0].Module)
	}
}

func TestRouteStripsFences(t *testing.T) {
	r := New(&stubLLM{response: "```json\n{\"module_preferences\":[{\"module\":\"general\",\"relevance\":0.8}]}\n```"})

	route := r.Route(context.Background(), "hello")
	if route.Failed {
		t.Fatalf("fenced JSON should parse")
	}
	if route.Preferences[0].Module != ModuleGeneral {
		t.Fatalf("expected general first, got %s", route.Preferences[0].Module)
	}
}

func TestRouteFailsOnMalformedResponse(t *testing.T) {
	for _, response := range []string{"not json at all", `{"module_preferences": "nope"}`, ""} {
		r := New(&stubLLM{response: response})
		route := r.Route(context.Background(), "anything")
		if !route.Failed {
			t.Fatalf("response %q should fail routing", response)
		}
		if len(route.Preferences) != 0 {
			t.Fatalf("failed route must carry no preferences, got %d", len(route.Preferences))
		}
	}
}

func TestRouteFailsOnLLMError(t *testing.T) {
	r := New(&stubLLM{err: errors.New("boom")})
	route := r.Route(context.Background(), "anything")
	if !route.Failed {
		t.Fatalf("LLM error should fail routing")
	}
}

func TestRepairDropsUnknownModulesAndCompletes(t *testing.T) {
	prefs := Repair([]RawPreference{
		{Module: "weather", Relevance: 0.9},
		{Module: "railway_rag", Relevance: 0.5},
	})

	if len(prefs) != len(Modules) {
		t.Fatalf("expected %d entries, got %d", len(Modules), len(prefs))
	}
	seen := make(map[Module]int)
	for _, p := range prefs {
		seen[p.Module]++
	}
	for _, m := range Modules {
		if seen[m] != 1 {
			t.Fatalf("module %s appears %d times, want exactly 1", m, seen[m])
		}
	}
	if prefs[0].Module != ModuleRuleAnswer || prefs[0].Relevance != 0.5 {
		t.Fatalf("expected railway_rag at 0.5 first, got %+v", prefs[0])
	}
}

func TestRepairDropsNonNumericRelevance(t *testing.T) {
	prefs := Repair([]RawPreference{
		{Module: "railway_rag", Relevance: "high"},
		{Module: "general", Relevance: "0.7"},
	})

	for _, p := range prefs {
		switch p.Module {
		case ModuleRuleAnswer:
			if p.Relevance != 0 {
				t.Fatalf("non-numeric relevance should be dropped then completed at 0, got %v", p.Relevance)
			}
		case ModuleGeneral:
			if p.Relevance != 0.7 {
				t.Fatalf("numeric string should coerce to 0.7, got %v", p.Relevance)
			}
		}
	}
}

func TestRepairClampsRelevance(t *testing.T) {
	prefs := Repair([]RawPreference{
		{Module: "railway_rag", Relevance: 1.7},
		{Module: "general", Relevance: -0.3},
	})

	for _, p := range prefs {
		if p.Relevance < 0 || p.Relevance > 1 {
			t.Fatalf("relevance %v for %s out of [0,1]", p.Relevance, p.Module)
		}
	}
	if prefs[0].Module != ModuleRuleAnswer || prefs[0].Relevance != 1.0 {
		t.Fatalf("expected clamped 1.0 first, got %+v", prefs[0])
	}
}

func TestRepairSortsNonIncreasing(t *testing.T) {
	prefs := Repair([]RawPreference{
		{Module: "link_answer", Relevance: 0.2},
		{Module: "general", Relevance: 0.9},
		{Module: "railway_rag", Relevance: 0.4},
		{Module: "live_data_apis", Relevance: 0.4},
	})

	for i := 1; i < len(prefs); i++ {
		if prefs[i].Relevance > prefs[i-1].Relevance {
			t.Fatalf("preferences not sorted at %d: %v then %v", i, prefs[i-1].Relevance, prefs[i].Relevance)
		}
	}
}

func TestRelevanceOf(t *testing.T) {
	route := &RouteResult{Preferences: []Preference{
		{Module: ModuleGeneral, Relevance: 0.6},
	}}
	if got := route.RelevanceOf(ModuleGeneral); got != 0.6 {
		t.Fatalf("expected 0.6, got %v", got)
	}
	if got := route.RelevanceOf(ModuleLinkOnly); got != 0 {
		t.Fatalf("absent module should report 0, got %v", got)
	}
}
