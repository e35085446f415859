// Package source defines the result shape shared by every answer-producing
// module, so the orchestrator can branch on a closed set of statuses.
package source

// Status is the closed set of outcomes a source can report. A Result with
// HasAnswer=false always carries a status sufficient for the orchestrator to
// decide continue-vs-stop.
type Status string

const (
	// StatusOK means the source produced an answer.
	StatusOK Status = "ok"
	// StatusNothing means the source has nothing to say for this query.
	StatusNothing Status = "nothing"
	// StatusAPIFailed means the upstream data provider returned no data.
	StatusAPIFailed Status = "api_failed"
	// StatusNeedInput means required entity fields are missing from the query.
	StatusNeedInput Status = "need_input"
	// StatusNoAnswer means the source declined (low confidence or empty output).
	StatusNoAnswer Status = "no_answer"
)

// Freshness classifies how current a live-data response is.
type Freshness string

const (
	FreshnessFresh   Freshness = "fresh"
	FreshnessStale   Freshness = "stale"
	FreshnessUnknown Freshness = "unknown"
)

// Citation is the provenance of one ranked candidate, without the text body.
type Citation struct {
	SourcePath    string `json:"document_path"`
	Authority     string `json:"authority,omitempty"`
	RuleType      string `json:"rule_type,omitempty"`
	Page          int    `json:"page_number,omitempty"`
	Section       int    `json:"section_index,omitempty"`
	EffectiveYear int    `json:"effective_year,omitempty"`
}

// Meta carries per-source detail alongside the answer.
type Meta struct {
	Status        Status
	Confidence    float64
	Citations     []Citation
	RuleTypes     []string
	Intent        string
	Freshness     Freshness
	FallbackUsed  bool
	MissingFields []string
	Mode          string
	Requested     int
	Returned      int
}

// Result is the uniform shape every source-calling function returns.
// Answer holds text; Links holds URLs when the source answers with links.
type Result struct {
	Answer    string
	Links     []string
	HasAnswer bool
	Meta      Meta
}

// Declined builds a non-answer with the given status.
func Declined(status Status) *Result {
	return &Result{Meta: Meta{Status: status}}
}
