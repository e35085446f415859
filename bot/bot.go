// Package bot sequences the router and the four answer sources for one
// query and produces the final user-visible text.
package bot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/router"
	"github.com/railmitra/railmitra/source"
	"github.com/railmitra/railmitra/source/general"
	"github.com/railmitra/railmitra/source/links"
)

// Confidence and relevance thresholds driving the decision tree.
const (
	HighConfidence   = 0.75
	LowConfidence    = 0.45
	LinkRelevanceMin = 0.01
	// RelevanceCloseDelta is how close the live-data relevance must be to
	// the general relevance before a general answer gets reference links.
	RelevanceCloseDelta = 0.10
)

// Fixed user-facing messages.
const (
	MsgEmptyInput = "Please enter a query so I can help you."
	MsgNoiseInput = "I couldn’t understand the input. Please enter a clear question."
	MsgApology    = "Sorry, I ran into an unexpected problem while answering. Please try again."
)

// QueryRouter ranks modules for a query.
type QueryRouter interface {
	Route(ctx context.Context, query string) *router.RouteResult
}

// RuleSource answers from ranked rule passages.
type RuleSource interface {
	Answer(ctx context.Context, query string) (*source.Result, error)
}

// LiveSource answers from the third-party data provider.
type LiveSource interface {
	Answer(ctx context.Context, query string) (*source.Result, error)
}

// LinkSource serves reference URLs, standalone and as supplements.
type LinkSource interface {
	Answer(ctx context.Context, query string) (*source.Result, error)
	Retrieve(ctx context.Context, query string, topK int) ([]links.Link, error)
}

// GeneralSource is the conversational and failsafe source.
type GeneralSource interface {
	Answer(ctx context.Context, query string, route *router.RouteResult, mode general.Mode) (*source.Result, error)
}

// Bot is the orchestrator. All collaborators are injected so tests can
// substitute fixtures.
type Bot struct {
	router  QueryRouter
	rules   RuleSource
	live    LiveSource
	links   LinkSource
	general GeneralSource
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Bot.
func New(qr QueryRouter, rules RuleSource, live LiveSource, linkSrc LinkSource, gen GeneralSource) *Bot {
	return &Bot{
		router:  qr,
		rules:   rules,
		live:    live,
		links:   linkSrc,
		general: gen,
		logger:  logging.WithComponent("bot"),
		tracer:  otel.Tracer("railmitra/bot"),
	}
}

// noisePattern matches input made solely of symbols. Letters and digits in
// any script count as content, so non-Latin queries route normally.
var noisePattern = regexp.MustCompile(`^[^\pL\pN\s_]+$`)

// AnswerQuery answers one query end to end. It always returns non-empty
// text and never lets a failure escape: unexpected errors are logged and
// converted to a fixed apology.
func (b *Bot) AnswerQuery(ctx context.Context, query string) string {
	ctx, span := b.tracer.Start(ctx, "bot.answer_query")
	defer span.End()

	answer, err := b.answer(ctx, query)
	if err != nil {
		b.logger.Error("query failed", "error", err)
		span.RecordError(err)
		return MsgApology
	}
	return answer
}

func (b *Bot) answer(ctx context.Context, query string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while answering", "panic", r)
			out = MsgApology
			err = nil
		}
	}()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return MsgEmptyInput, nil
	}
	if noisePattern.MatchString(trimmed) {
		return MsgNoiseInput, nil
	}

	route := b.router.Route(ctx, query)
	if route.Failed {
		b.logger.Warn("router failed, using failsafe")
		return b.failsafe(ctx, query, route)
	}

	tried := make(map[router.Module]bool)
	for _, pref := range route.Preferences {
		if tried[pref.Module] {
			continue
		}
		tried[pref.Module] = true

		answer, done, err := b.tryModule(ctx, query, pref.Module, route)
		if err != nil {
			return "", err
		}
		if done {
			return answer, nil
		}
	}

	return b.failsafe(ctx, query, route)
}

// tryModule runs one ranked module. done=false means continue down the
// ranking.
func (b *Bot) tryModule(ctx context.Context, query string, module router.Module, route *router.RouteResult) (string, bool, error) {
	ctx, span := b.tracer.Start(ctx, "bot.try_module",
		trace.WithAttributes(attribute.String("module", string(module))))
	defer span.End()

	switch module {
	case router.ModuleLinkOnly:
		return b.tryLinkOnly(ctx, query)
	case router.ModuleRuleAnswer:
		return b.tryRules(ctx, query, route)
	case router.ModuleLiveData:
		return b.tryLiveData(ctx, query, route)
	case router.ModuleGeneral:
		return b.tryGeneral(ctx, query, route)
	}
	return "", false, nil
}

func (b *Bot) tryLinkOnly(ctx context.Context, query string) (string, bool, error) {
	result, err := b.links.Answer(ctx, query)
	if err != nil {
		return "", false, err
	}
	if !result.HasAnswer {
		return "", false, nil
	}
	return strings.Join(result.Links, "\n"), true, nil
}

func (b *Bot) tryRules(ctx context.Context, query string, route *router.RouteResult) (string, bool, error) {
	result, err := b.rules.Answer(ctx, query)
	if err != nil {
		return "", false, err
	}
	if !result.HasAnswer {
		return "", false, nil
	}

	conf := result.Meta.Confidence
	switch {
	case conf >= HighConfidence:
		return result.Answer, true, nil
	case conf >= LowConfidence:
		if route.RelevanceOf(router.ModuleLinkOnly) > LinkRelevanceMin {
			if supplement := b.supplement(ctx, query, reasonRagModerate); supplement != "" {
				return result.Answer + supplement, true, nil
			}
		}
		return result.Answer, true, nil
	default:
		// The source already declines below the low boundary; kept as a
		// safety net.
		return "", false, nil
	}
}

func (b *Bot) tryLiveData(ctx context.Context, query string, route *router.RouteResult) (string, bool, error) {
	result, err := b.live.Answer(ctx, query)
	if err != nil {
		return "", false, err
	}

	switch result.Meta.Status {
	case source.StatusNothing:
		return "", false, nil

	case source.StatusAPIFailed:
		// Always attempted, not gated on link relevance.
		if supplement := b.supplement(ctx, query, reasonAPINotWorking); supplement != "" {
			return strings.TrimPrefix(supplement, "\n\n"), true, nil
		}
		return "", false, nil

	case source.StatusNeedInput:
		// Terminates the loop entirely; no further modules are tried.
		return needInputMessage(result.Meta.MissingFields), true, nil

	case source.StatusOK:
		freshness := result.Meta.Freshness
		if freshness == source.FreshnessFresh && !result.Meta.FallbackUsed {
			return result.Answer, true, nil
		}
		if route.RelevanceOf(router.ModuleLinkOnly) > LinkRelevanceMin {
			reason := reasonAPIUnknown
			if freshness == source.FreshnessStale {
				reason = reasonAPIStale
			}
			if supplement := b.supplement(ctx, query, reason); supplement != "" {
				return result.Answer + supplement, true, nil
			}
		}
		// Link relevance at or below threshold falls through to the next
		// module rather than returning the unembellished answer.
		return "", false, nil
	}
	return "", false, nil
}

func (b *Bot) tryGeneral(ctx context.Context, query string, route *router.RouteResult) (string, bool, error) {
	result, err := b.general.Answer(ctx, query, route, general.ModeModule)
	if err != nil {
		return "", false, err
	}

	genRel := route.RelevanceOf(router.ModuleGeneral)
	srcRel := route.RelevanceOf(router.ModuleLiveData)
	if result.Answer != "" && srcRel > LinkRelevanceMin && abs(genRel-srcRel) <= RelevanceCloseDelta {
		if supplement := b.supplement(ctx, query, reasonGeneralInfo); supplement != "" {
			return result.Answer + supplement, true, nil
		}
	}
	if result.HasAnswer {
		return result.Answer, true, nil
	}
	return "", false, nil
}

// failsafe always produces text.
func (b *Bot) failsafe(ctx context.Context, query string, route *router.RouteResult) (string, error) {
	result, err := b.general.Answer(ctx, query, route, general.ModeFailsafe)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// supplement fetches reference links and renders them under the given
// framing; empty when no links are found or retrieval fails.
func (b *Bot) supplement(ctx context.Context, query string, reason linkReason) string {
	found, err := b.links.Retrieve(ctx, query, links.DefaultCount)
	if err != nil {
		b.logger.Warn("supplementary link retrieval failed", "error", err)
		return ""
	}
	if len(found) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(reason.text())
	sb.WriteString("\n")
	for _, l := range found {
		sb.WriteString(l.URL)
		sb.WriteString("\n")
	}
	return sb.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
