package retrieval

import "math"

// Confidence regime boundaries and mixing weights. The 0.9 cap encodes that
// the estimator never claims near-certainty.
const (
	lowConfidenceTop   = 0.45
	lowConfidenceScale = 0.8
	supportWindow      = 0.10
	topWeight          = 0.75
	supportWeight      = 0.25
	confidenceCap      = 0.9
)

// EstimateConfidence summarizes the trustworthiness of a candidate set as a
// single score in [0, 0.9], derived purely from raw similarities. An empty
// set scores exactly 0.
func EstimateConfidence(candidates []Candidate) float64 {
	if len(candidates) == 0 {
		return 0.0
	}

	top := candidates[0].RawSimilarity
	for _, c := range candidates[1:] {
		if c.RawSimilarity > top {
			top = c.RawSimilarity
		}
	}

	// No strong rule at all: penalized low-confidence regime.
	if top < lowConfidenceTop {
		return round2(top * lowConfidenceScale)
	}

	// Support set: candidates close enough to the best one.
	var supportSum float64
	var supportCount int
	for _, c := range candidates {
		if c.RawSimilarity >= top-supportWindow {
			supportSum += c.RawSimilarity
			supportCount++
		}
	}
	supportMean := supportSum / float64(supportCount)

	confidence := topWeight*top + supportWeight*supportMean
	return round2(math.Min(confidence, confidenceCap))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
