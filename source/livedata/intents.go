package livedata

import (
	"context"
	"encoding/json"
	"net/http"
)

// Intent tags one supported live-data operation.
type Intent string

const (
	IntentTrainLiveStatus       Intent = "train_live_status"
	IntentTrainSchedule         Intent = "train_schedule"
	IntentTrainsBetweenStations Intent = "trains_between_stations"
	IntentSeatAvailability      Intent = "seat_availability"
	IntentSeatAvailabilityV2    Intent = "seat_availability_v2"
	IntentFareEnquiry           Intent = "fare_enquiry"
	IntentPNRStatus             Intent = "pnr_status"
	IntentLiveStation           Intent = "live_station"
	IntentTrainsByStation       Intent = "trains_by_station"
	IntentSearchTrain           Intent = "search_train"
	IntentSearchStation         Intent = "search_station"
)

// Field names an entity slot referenced by operations.
type Field string

const (
	FieldTrainNumber Field = "train_number"
	FieldPNR         Field = "pnr"
	FieldStationCode Field = "station_code"
	FieldFromStation Field = "from_station"
	FieldToStation   Field = "to_station"
	FieldDate        Field = "date"
	FieldClassType   Field = "class_type"
	FieldQuota       Field = "quota"
	FieldHours       Field = "hours"
	FieldQuery       Field = "query"
)

// Entity is the resolved per-query parameter set. Values never contain
// inferred defaults except the current date for station-pair queries.
type Entity map[Field]string

// get returns the field value or a default when absent.
func (e Entity) get(f Field, def string) string {
	if v, ok := e[f]; ok {
		return v
	}
	return def
}

// CallFunc dispatches one provider operation with the resolved entity.
// Implementing operations as capabilities keeps the dispatch logic untouched
// when new intents are added.
type CallFunc func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error)

// Operation binds an intent to its provider call, its declared required
// fields, and an optional fallback intent.
type Operation struct {
	Required []Field
	Call     CallFunc
	Fallback Intent
}

// Operations is the fixed intent dispatch table.
var Operations = map[Intent]Operation{
	IntentTrainLiveStatus: {
		Required: []Field{FieldTrainNumber},
		Fallback: IntentTrainSchedule,
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/liveTrainStatus", map[string]string{
				"trainNo": e[FieldTrainNumber],
			})
		},
	},
	IntentTrainSchedule: {
		Required: []Field{FieldTrainNumber},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/getTrainSchedule", map[string]string{
				"trainNo": e[FieldTrainNumber],
			})
		},
	},
	IntentTrainsBetweenStations: {
		Required: []Field{FieldFromStation, FieldToStation, FieldDate},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v3/trainBetweenStations", map[string]string{
				"fromStationCode": e[FieldFromStation],
				"toStationCode":   e[FieldToStation],
				"dateOfJourney":   e[FieldDate],
			})
		},
	},
	IntentSeatAvailability: {
		Required: []Field{FieldTrainNumber, FieldFromStation, FieldToStation, FieldDate, FieldClassType},
		Fallback: IntentSeatAvailabilityV2,
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/checkSeatAvailability", seatParams(e))
		},
	},
	IntentSeatAvailabilityV2: {
		Required: []Field{FieldTrainNumber, FieldFromStation, FieldToStation, FieldDate, FieldClassType},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v2/checkSeatAvailability", seatParams(e))
		},
	},
	IntentFareEnquiry: {
		Required: []Field{FieldTrainNumber, FieldFromStation, FieldToStation, FieldDate, FieldClassType},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/getFare", seatParams(e))
		},
	},
	IntentPNRStatus: {
		Required: []Field{FieldPNR},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v3/getPNRStatus", map[string]string{
				"pnrNumber": e[FieldPNR],
			})
		},
	},
	IntentLiveStation: {
		Required: []Field{FieldStationCode},
		Fallback: IntentTrainsByStation,
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v3/getLiveStation", map[string]string{
				"fromStationCode": e[FieldStationCode],
				"hours":           e.get(FieldHours, "2"),
			})
		},
	},
	IntentTrainsByStation: {
		Required: []Field{FieldStationCode},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v3/getTrainsByStation", map[string]string{
				"stationCode": e[FieldStationCode],
			})
		},
	},
	IntentSearchTrain: {
		Required: []Field{FieldQuery},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/searchTrain", map[string]string{
				"query": e[FieldQuery],
			})
		},
	},
	IntentSearchStation: {
		Required: []Field{FieldQuery},
		Call: func(ctx context.Context, api API, e Entity) (json.RawMessage, http.Header, error) {
			return api.Call(ctx, "/api/v1/searchStation", map[string]string{
				"query": e[FieldQuery],
			})
		},
	},
}

func seatParams(e Entity) map[string]string {
	return map[string]string{
		"trainNo":         e[FieldTrainNumber],
		"fromStationCode": e[FieldFromStation],
		"toStationCode":   e[FieldToStation],
		"date":            e[FieldDate],
		"classType":       e[FieldClassType],
		"quota":           e.get(FieldQuota, "GN"),
	}
}

// missingFields returns required fields absent from the entity, in the
// declared order.
func missingFields(op Operation, e Entity) []string {
	var missing []string
	for _, f := range op.Required {
		if _, ok := e[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	return missing
}
