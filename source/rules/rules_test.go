package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/retrieval"
	"github.com/railmitra/railmitra/source"
)

type stubRetriever struct {
	candidates []retrieval.Candidate
	err        error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]retrieval.Candidate, error) {
	return s.candidates, s.err
}

type stubLLM struct {
	response string
	err      error
	lastUser string
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.Request) (string, error) {
	s.lastUser = req.User
	return s.response, s.err
}

type fixedTokenizer struct{ perBlock int }

func (f fixedTokenizer) CountTokens(text string) int { return f.perBlock }

func strongCandidates() []retrieval.Candidate {
	return []retrieval.Candidate{
		{
			ID:            "c1",
			SourcePath:    "docs/railway_act.pdf",
			Authority:     "Ministry of Railways",
			RuleType:      "penalty",
			Page:          12,
			Section:       3,
			RawSimilarity: 0.80,
			Text:          "A fine of five hundred rupees shall be levied.",
		},
		{
			ID:            "c2",
			SourcePath:    "docs/railway_act.pdf",
			Authority:     "Ministry of Railways",
			RuleType:      "procedure",
			Page:          14,
			Section:       1,
			RawSimilarity: 0.78,
			Text:          "The fine shall be collected by the authorised officer.",
		},
	}
}

func TestAnswerNoCandidates(t *testing.T) {
	a := New(&stubRetriever{}, &stubLLM{}, nil)

	res, err := a.Answer(context.Background(), "penalty for ticketless travel")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.HasAnswer || res.Meta.Status != source.StatusNoAnswer {
		t.Fatalf("no candidates should produce no answer, got %+v", res.Meta)
	}
	if res.Meta.Confidence != 0.0 {
		t.Fatalf("expected confidence 0, got %v", res.Meta.Confidence)
	}
}

func TestAnswerAccepted(t *testing.T) {
	chat := &stubLLM{response: "The fine is five hundred rupees."}
	a := New(&stubRetriever{candidates: strongCandidates()}, chat, nil)

	res, err := a.Answer(context.Background(), "penalty for ticketless travel")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasAnswer {
		t.Fatalf("confidence %v should clear the acceptance threshold", res.Meta.Confidence)
	}
	if res.Meta.Status != source.StatusOK {
		t.Fatalf("expected ok status, got %s", res.Meta.Status)
	}
	if res.Answer != "The fine is five hundred rupees." {
		t.Fatalf("unexpected answer: %q", res.Answer)
	}
	if len(res.Meta.Citations) != 2 {
		t.Fatalf("expected citations for every candidate, got %d", len(res.Meta.Citations))
	}
	if got := res.Meta.RuleTypes; len(got) != 2 || got[0] != "penalty" || got[1] != "procedure" {
		t.Fatalf("unexpected rule types: %v", got)
	}
}

func TestAnswerLowConfidenceNotAccepted(t *testing.T) {
	weak := []retrieval.Candidate{{ID: "c1", RawSimilarity: 0.35, Text: "unrelated"}}
	a := New(&stubRetriever{candidates: weak}, &stubLLM{response: "Some answer."}, nil)

	res, err := a.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.HasAnswer {
		t.Fatalf("low-confidence answer must not be accepted")
	}
	if res.Meta.Status != source.StatusNoAnswer {
		t.Fatalf("expected no_answer, got %s", res.Meta.Status)
	}
	if res.Answer == "" {
		t.Fatalf("the drafted answer is still reported for the orchestrator")
	}
}

func TestAnswerEmptyCompletion(t *testing.T) {
	a := New(&stubRetriever{candidates: strongCandidates()}, &stubLLM{response: "   "}, nil)

	res, err := a.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.HasAnswer || res.Answer != "" {
		t.Fatalf("blank completion should yield no answer, got %+v", res)
	}
	if res.Meta.Confidence == 0 {
		t.Fatalf("confidence still reflects the candidate set")
	}
}

func TestAnswerPromptCarriesProvenance(t *testing.T) {
	chat := &stubLLM{response: "ok"}
	a := New(&stubRetriever{candidates: strongCandidates()}, chat, nil)

	if _, err := a.Answer(context.Background(), "penalty for ticketless travel"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	for _, want := range []string{
		"[Source 1]", "[Source 2]",
		"Document: docs/railway_act.pdf",
		"Authority: Ministry of Railways",
		"Page: 12, Section: 3",
	} {
		if !strings.Contains(chat.lastUser, want) {
			t.Fatalf("prompt missing %q:\n%s", want, chat.lastUser)
		}
	}
}

func TestBuildContextBudget(t *testing.T) {
	a := New(&stubRetriever{}, &stubLLM{}, fixedTokenizer{perBlock: 100},
		WithContextTokenBudget(150))

	grounded := a.buildContext(strongCandidates())
	if strings.Contains(grounded, "[Source 2]") {
		t.Fatalf("second block should be dropped by the token budget")
	}
	if !strings.Contains(grounded, "[Source 1]") {
		t.Fatalf("first block is always kept")
	}
}

func TestAnswerRetrieveError(t *testing.T) {
	a := New(&stubRetriever{err: errors.New("index down")}, &stubLLM{}, nil)
	if _, err := a.Answer(context.Background(), "anything"); err == nil {
		t.Fatalf("retrieval error must propagate")
	}
}

func TestAnswerCompletionError(t *testing.T) {
	a := New(&stubRetriever{candidates: strongCandidates()}, &stubLLM{err: errors.New("quota")}, nil)
	if _, err := a.Answer(context.Background(), "anything"); err == nil {
		t.Fatalf("completion error must propagate")
	}
}
