package livedata

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/railmitra/railmitra/llm"
	"github.com/railmitra/railmitra/lookup"
	"github.com/railmitra/railmitra/source"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.Request) (string, error) {
	return s.response, s.err
}

type apiCall struct {
	path   string
	params map[string]string
}

type apiResponse struct {
	data    json.RawMessage
	headers http.Header
	err     error
}

type stubAPI struct {
	responses map[string]apiResponse
	calls     []apiCall
}

func (s *stubAPI) Call(ctx context.Context, path string, params map[string]string) (json.RawMessage, http.Header, error) {
	s.calls = append(s.calls, apiCall{path: path, params: params})
	resp := s.responses[path]
	return resp.data, resp.headers, resp.err
}

func testTables() *lookup.Tables {
	return lookup.New(
		map[string]string{"new delhi": "NDLS", "mumbai central": "MMCT"},
		map[string]string{"rajdhani express": "12951"},
	)
}

func freshHeaders(now time.Time) http.Header {
	h := http.Header{}
	h.Set("Date", now.Add(-5*time.Minute).UTC().Format(http.TimeFormat))
	return h
}

func newTestService(chat llm.Client, api API, now time.Time) *Service {
	svc := New(chat, testTables(), api)
	svc.now = func() time.Time { return now }
	return svc
}

func extractionJSON(fields string) string {
	return `{"intent": ` + fields + `}`
}

func TestAnswerUnknownIntent(t *testing.T) {
	svc := newTestService(&stubLLM{response: extractionJSON(`"unknown"`)}, &stubAPI{}, time.Now())

	res, err := svc.Answer(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Meta.Status != source.StatusNothing {
		t.Fatalf("unknown intent should report nothing, got %s", res.Meta.Status)
	}
}

func TestAnswerNeedInput(t *testing.T) {
	svc := newTestService(&stubLLM{response: extractionJSON(`"pnr_status"`)}, &stubAPI{}, time.Now())

	res, err := svc.Answer(context.Background(), "check my pnr")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Meta.Status != source.StatusNeedInput {
		t.Fatalf("expected need_input, got %s", res.Meta.Status)
	}
	if res.Meta.Intent != "pnr_status" {
		t.Fatalf("expected intent preserved, got %s", res.Meta.Intent)
	}
	if len(res.Meta.MissingFields) != 1 || res.Meta.MissingFields[0] != "pnr" {
		t.Fatalf("expected missing [pnr], got %v", res.Meta.MissingFields)
	}
}

func TestAnswerLiveStatusOK(t *testing.T) {
	now := time.Now()
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v1/liveTrainStatus": {
			data:    json.RawMessage(`{"position": "on time"}`),
			headers: freshHeaders(now),
		},
	}}
	chat := &stubLLM{response: `{"intent": "train_live_status", "train_numbers": ["12951"]}`}
	svc := newTestService(chat, api, now)

	res, err := svc.Answer(context.Background(), "where is 12951 now")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasAnswer || res.Meta.Status != source.StatusOK {
		t.Fatalf("expected ok, got %+v", res.Meta)
	}
	if res.Meta.Freshness != source.FreshnessFresh {
		t.Fatalf("expected fresh, got %s", res.Meta.Freshness)
	}
	if res.Meta.FallbackUsed {
		t.Fatalf("primary succeeded; fallback must not be flagged")
	}
	if !strings.Contains(res.Answer, "on time") {
		t.Fatalf("payload missing from answer: %q", res.Answer)
	}
	if len(api.calls) != 1 || api.calls[0].params["trainNo"] != "12951" {
		t.Fatalf("unexpected provider calls: %+v", api.calls)
	}
}

func TestAnswerFallsBackToSchedule(t *testing.T) {
	now := time.Now()
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v1/liveTrainStatus": {},
		"/api/v1/getTrainSchedule": {
			data:    json.RawMessage(`{"stops": 12}`),
			headers: freshHeaders(now),
		},
	}}
	chat := &stubLLM{response: `{"intent": "train_live_status", "train_numbers": ["12951"]}`}
	svc := newTestService(chat, api, now)

	res, err := svc.Answer(context.Background(), "where is 12951 now")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasAnswer || !res.Meta.FallbackUsed {
		t.Fatalf("expected fallback answer, got %+v", res.Meta)
	}
	if len(api.calls) != 2 || api.calls[1].path != "/api/v1/getTrainSchedule" {
		t.Fatalf("expected one fallback hop, got %+v", api.calls)
	}
}

func TestAnswerAPIFailed(t *testing.T) {
	api := &stubAPI{responses: map[string]apiResponse{}}
	chat := &stubLLM{response: `{"intent": "train_schedule", "train_numbers": ["12951"]}`}
	svc := newTestService(chat, api, time.Now())

	res, err := svc.Answer(context.Background(), "schedule of 12951")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Meta.Status != source.StatusAPIFailed {
		t.Fatalf("expected api_failed, got %s", res.Meta.Status)
	}
	if res.HasAnswer {
		t.Fatalf("failed call must not claim an answer")
	}
}

func TestAnswerDefaultsJourneyDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v3/trainBetweenStations": {
			data:    json.RawMessage(`[{"train": "12951"}]`),
			headers: freshHeaders(now),
		},
	}}
	chat := &stubLLM{response: `{"intent": "trains_between_stations", "journey": {"from": "New Delhi", "to": "Mumbai Central"}}`}
	svc := newTestService(chat, api, now)

	res, err := svc.Answer(context.Background(), "trains from delhi to mumbai")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !res.HasAnswer {
		t.Fatalf("expected answer, got %+v", res.Meta)
	}
	params := api.calls[0].params
	if params["fromStationCode"] != "NDLS" || params["toStationCode"] != "MMCT" {
		t.Fatalf("station codes not resolved: %v", params)
	}
	if params["dateOfJourney"] != "31-08-2026" {
		t.Fatalf("expected today's date defaulted, got %q", params["dateOfJourney"])
	}
}

func TestAnswerDoesNotDefaultDateForSeats(t *testing.T) {
	chat := &stubLLM{response: `{
		"intent": "seat_availability",
		"train_numbers": ["12951"],
		"journey": {"from": "New Delhi", "to": "Mumbai Central"},
		"class_type": "3A"
	}`}
	svc := newTestService(chat, &stubAPI{}, time.Now())

	res, err := svc.Answer(context.Background(), "seats on 12951 delhi to mumbai 3A")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Meta.Status != source.StatusNeedInput {
		t.Fatalf("missing date must ask for input, got %s", res.Meta.Status)
	}
	if len(res.Meta.MissingFields) != 1 || res.Meta.MissingFields[0] != "date" {
		t.Fatalf("expected missing [date], got %v", res.Meta.MissingFields)
	}
}

func TestSeatParamsQuotaDefault(t *testing.T) {
	e := Entity{
		FieldTrainNumber: "12951",
		FieldFromStation: "NDLS",
		FieldToStation:   "MMCT",
		FieldDate:        "31-08-2026",
		FieldClassType:   "3A",
	}
	if got := seatParams(e)["quota"]; got != "GN" {
		t.Fatalf("expected default quota GN, got %q", got)
	}
	e[FieldQuota] = "TQ"
	if got := seatParams(e)["quota"]; got != "TQ" {
		t.Fatalf("explicit quota must win, got %q", got)
	}
}

func TestLiveStationHoursDefault(t *testing.T) {
	now := time.Now()
	api := &stubAPI{responses: map[string]apiResponse{
		"/api/v3/getLiveStation": {
			data:    json.RawMessage(`[]`),
			headers: freshHeaders(now),
		},
	}}
	op := Operations[IntentLiveStation]

	if _, _, err := op.Call(context.Background(), api, Entity{FieldStationCode: "NDLS"}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := api.calls[0].params["hours"]; got != "2" {
		t.Fatalf("expected default hours 2, got %q", got)
	}
}

func TestMissingFieldsOrder(t *testing.T) {
	op := Operations[IntentSeatAvailability]
	missing := missingFields(op, Entity{FieldToStation: "MMCT"})
	want := []string{"train_number", "from_station", "date", "class_type"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, missing)
		}
	}
}

func TestAnswerExtractionError(t *testing.T) {
	svc := newTestService(&stubLLM{response: "not json"}, &stubAPI{}, time.Now())
	if _, err := svc.Answer(context.Background(), "anything"); err == nil {
		t.Fatalf("unparsable extraction must propagate an error")
	}
}
