// Package livedata answers time-sensitive railway queries by extracting
// structured intent from free text, resolving names to codes, and
// dispatching to the third-party data provider with a single fallback hop.
package livedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/lookup"
	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/source"
)

// Service owns the live-data decision shell: extraction, resolution,
// validation, dispatch with fallback, and freshness classification.
type Service struct {
	extractor *extractor
	resolver  *resolver
	api       API
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a live-data Service.
func New(client llm.Client, tables *lookup.Tables, api API) *Service {
	return &Service{
		extractor: &extractor{llm: client},
		resolver:  &resolver{tables: tables, api: api},
		api:       api,
		logger:    logging.WithComponent("livedata"),
		now:       time.Now,
	}
}

// Answer runs the full live-data pipeline for one query.
func (s *Service) Answer(ctx context.Context, query string) (*source.Result, error) {
	parsed, err := s.extractor.extract(ctx, query)
	if err != nil {
		return nil, err
	}

	intent := Intent(parsed.Intent)
	op, ok := Operations[intent]
	if !ok {
		return source.Declined(source.StatusNothing), nil
	}

	entity := s.resolve(ctx, query, intent, parsed)

	if missing := missingFields(op, entity); len(missing) > 0 {
		s.logger.Debug("live data needs input", "intent", string(intent), "missing", missing)
		return &source.Result{
			Meta: source.Meta{
				Status:        source.StatusNeedInput,
				Intent:        string(intent),
				MissingFields: missing,
			},
		}, nil
	}

	data, headers, fallbackUsed := s.dispatch(ctx, intent, op, entity)
	freshness := classifyFreshness(headers, s.now())

	if data == nil {
		s.logger.Warn("live data provider returned nothing", "intent", string(intent))
		return &source.Result{
			Meta: source.Meta{Status: source.StatusAPIFailed, Intent: string(intent)},
		}, nil
	}

	return &source.Result{
		Answer:    formatPayload(data),
		HasAnswer: true,
		Meta: source.Meta{
			Status:       source.StatusOK,
			Intent:       string(intent),
			FallbackUsed: fallbackUsed,
			Freshness:    freshness,
		},
	}, nil
}

// resolve builds the entity from extracted values, never inventing anything
// except the journey date for station-pair queries.
func (s *Service) resolve(ctx context.Context, query string, intent Intent, parsed *extraction) Entity {
	entity := Entity{FieldQuery: query}

	if len(parsed.TrainNumbers) > 0 {
		if number := s.resolver.trainNumber(parsed.TrainNumbers[0]); number != "" {
			entity[FieldTrainNumber] = number
		}
	}
	if len(parsed.PNRNumbers) > 0 {
		entity[FieldPNR] = parsed.PNRNumbers[0]
	}

	var resolved []string
	for _, name := range parsed.Stations {
		if code := s.resolver.stationCode(ctx, name); code != "" {
			resolved = append(resolved, code)
		}
	}
	if len(resolved) == 1 {
		entity[FieldStationCode] = resolved[0]
	}

	if parsed.Journey.From != "" && parsed.Journey.To != "" {
		from := s.resolver.stationCode(ctx, parsed.Journey.From)
		to := s.resolver.stationCode(ctx, parsed.Journey.To)
		if from != "" && to != "" {
			entity[FieldFromStation] = from
			entity[FieldToStation] = to
		}
	}

	if parsed.Date != "" {
		if normalized := normalizeDate(parsed.Date); normalized != "" {
			entity[FieldDate] = normalized
		}
	} else if intent == IntentTrainsBetweenStations {
		entity[FieldDate] = s.now().UTC().Format(apiDateFormat)
	}

	if parsed.ClassType != "" {
		entity[FieldClassType] = parsed.ClassType
	}
	if parsed.Quota != "" {
		entity[FieldQuota] = parsed.Quota
	}
	if parsed.Hours != nil {
		entity[FieldHours] = strconv.Itoa(*parsed.Hours)
	}
	return entity
}

// dispatch calls the primary operation, then the declared fallback once when
// the primary yields no data and the fallback's required fields are already
// satisfied.
func (s *Service) dispatch(ctx context.Context, intent Intent, op Operation, entity Entity) (json.RawMessage, http.Header, bool) {
	data, headers, err := op.Call(ctx, s.api, entity)
	if err != nil {
		s.logger.Warn("primary operation failed", "intent", string(intent), "error", err)
		data, headers = nil, nil
	}
	if data != nil || op.Fallback == "" {
		return data, headers, false
	}

	fallback, ok := Operations[op.Fallback]
	if !ok || len(missingFields(fallback, entity)) > 0 {
		return nil, headers, false
	}

	fbData, fbHeaders, err := fallback.Call(ctx, s.api, entity)
	if err != nil {
		s.logger.Warn("fallback operation failed", "intent", string(op.Fallback), "error", err)
		return nil, fbHeaders, false
	}
	if fbData == nil {
		return nil, fbHeaders, false
	}
	return fbData, fbHeaders, true
}

// formatPayload renders the raw provider payload for display.
func formatPayload(data json.RawMessage) string {
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		return string(data)
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(out)
}

// ensure the dispatch table stays internally consistent at init time.
func init() {
	for intent, op := range Operations {
		if op.Fallback == "" {
			continue
		}
		if _, ok := Operations[op.Fallback]; !ok {
			panic(fmt.Sprintf("livedata: intent %s declares unknown fallback %s", intent, op.Fallback))
		}
	}
}
