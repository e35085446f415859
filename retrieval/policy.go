package retrieval

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuestionType is a keyword-detected question archetype.
type QuestionType string

const (
	QuestionDefinition  QuestionType = "definition"
	QuestionPermission  QuestionType = "permission"
	QuestionProhibition QuestionType = "prohibition"
	QuestionProcedure   QuestionType = "procedure"
	QuestionPenalty     QuestionType = "penalty"
	QuestionGeneral     QuestionType = "general"
)

// Weights are the additive scoring bonuses applied on top of raw similarity.
type Weights struct {
	Priority     float64 `yaml:"priority"`
	RuleMatch    float64 `yaml:"rule_match"`
	Recency      float64 `yaml:"recency"`
	QuestionType float64 `yaml:"question_type"`
}

// Policy holds the lexical rule tables and scoring weights. It is a plain
// value so variants can be loaded from YAML and tuned independently of the
// retrieval mechanics.
type Policy struct {
	Weights Weights `yaml:"weights"`

	// QueryMarkers map each question type to the phrases that detect it in
	// the query. Detection checks types in DetectionOrder and falls back to
	// QuestionGeneral.
	QueryMarkers map[QuestionType][]string `yaml:"query_markers"`

	// TextMarkers map each question type to the lexical markers that must
	// appear in candidate text for the question-type bonus to apply.
	TextMarkers map[QuestionType][]string `yaml:"text_markers"`
}

// DetectionOrder fixes the precedence of question-type detection.
var DetectionOrder = []QuestionType{
	QuestionDefinition,
	QuestionPermission,
	QuestionProhibition,
	QuestionProcedure,
	QuestionPenalty,
}

// DefaultPolicy returns the compiled-in scoring policy.
func DefaultPolicy() *Policy {
	return &Policy{
		Weights: Weights{
			Priority:     0.15,
			RuleMatch:    0.10,
			Recency:      0.05,
			QuestionType: 0.10,
		},
		QueryMarkers: map[QuestionType][]string{
			QuestionDefinition:  {"what is", "define", "meaning of"},
			QuestionPermission:  {"can i", "allowed", "permitted"},
			QuestionProhibition: {"not allowed", "prohibited", "shall not"},
			QuestionProcedure:   {"how to", "procedure", "process"},
			QuestionPenalty:     {"penalty", "fine", "punishment", "liable"},
		},
		TextMarkers: map[QuestionType][]string{
			QuestionDefinition:  {"means", "defined as"},
			QuestionPermission:  {"may", "permitted", "allowed"},
			QuestionProhibition: {"shall not", "prohibited"},
			QuestionProcedure:   {"procedure", "steps", "shall be"},
			QuestionPenalty:     {"penalty", "fine", "liable"},
		},
	}
}

// LoadPolicy reads a policy from a YAML file. Omitted weights fall back to
// the defaults so a tuning file only needs to override what it changes.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return policy, nil
}

// DetectQuestionType classifies the query into an archetype.
func (p *Policy) DetectQuestionType(query string) QuestionType {
	q := strings.ToLower(query)
	for _, qt := range DetectionOrder {
		for _, marker := range p.QueryMarkers[qt] {
			if strings.Contains(q, marker) {
				return qt
			}
		}
	}
	return QuestionGeneral
}

// QuestionTypeBonus returns the bonus when the candidate text carries a
// lexical marker matching the detected question type.
func (p *Policy) QuestionTypeBonus(qt QuestionType, text string) float64 {
	t := strings.ToLower(text)
	for _, marker := range p.TextMarkers[qt] {
		if strings.Contains(t, marker) {
			return p.Weights.QuestionType
		}
	}
	return 0
}

// RuleMatchBonus returns the bonus when the candidate's declared rule type
// appears verbatim (case-insensitive) inside the query.
func (p *Policy) RuleMatchBonus(query, ruleType string) float64 {
	if ruleType == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(query), strings.ToLower(ruleType)) {
		return p.Weights.RuleMatch
	}
	return 0
}

// RecencyBonus scales with the rule's effective year; a zero year means the
// year is unknown and contributes nothing.
func (p *Policy) RecencyBonus(effectiveYear int) float64 {
	if effectiveYear == 0 {
		return 0
	}
	scaled := float64(effectiveYear-2000) / 25
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 1 {
		scaled = 1
	}
	return scaled * p.Weights.Recency
}

// PriorityBonus rewards authoritative sources; priority is always >= 1 and
// lower values are more authoritative.
func (p *Policy) PriorityBonus(priority int) float64 {
	if priority < 1 {
		priority = 1
	}
	return (1 / float64(priority)) * p.Weights.Priority
}
