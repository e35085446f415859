package retrieval

import "testing"

func candidatesWithSims(sims ...float64) []Candidate {
	out := make([]Candidate, len(sims))
	for i, s := range sims {
		out[i] = Candidate{RawSimilarity: s}
	}
	return out
}

func TestEstimateConfidenceEmpty(t *testing.T) {
	if got := EstimateConfidence(nil); got != 0.0 {
		t.Fatalf("empty candidate set must score 0, got %v", got)
	}
}

func TestEstimateConfidenceLowRegime(t *testing.T) {
	if got := EstimateConfidence(candidatesWithSims(0.40, 0.35)); got != 0.32 {
		t.Fatalf("expected 0.32 (0.40*0.8), got %v", got)
	}
}

func TestEstimateConfidenceSupportSet(t *testing.T) {
	// Support set is {0.80, 0.75}; 0.50 is outside the 0.10 window.
	// 0.75*0.80 + 0.25*0.775 = 0.79375 -> 0.79
	if got := EstimateConfidence(candidatesWithSims(0.80, 0.75, 0.50)); got != 0.79 {
		t.Fatalf("expected 0.79, got %v", got)
	}
}

func TestEstimateConfidenceCap(t *testing.T) {
	if got := EstimateConfidence(candidatesWithSims(1.0, 1.0, 1.0)); got != 0.9 {
		t.Fatalf("confidence must cap at 0.9, got %v", got)
	}
}

func TestEstimateConfidenceIgnoresOrder(t *testing.T) {
	a := EstimateConfidence(candidatesWithSims(0.50, 0.80, 0.75))
	b := EstimateConfidence(candidatesWithSims(0.80, 0.75, 0.50))
	if a != b {
		t.Fatalf("confidence must not depend on candidate order: %v vs %v", a, b)
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	sets := [][]float64{
		{0.01}, {0.44}, {0.45}, {0.9, 0.9, 0.1}, {1.0},
	}
	for _, sims := range sets {
		got := EstimateConfidence(candidatesWithSims(sims...))
		if got < 0 || got > 0.9 {
			t.Fatalf("confidence %v for sims %v out of [0, 0.9]", got, sims)
		}
	}
}
