package livedata

import (
	"context"
	"fmt"

	"github.com/railmitra/railmitra/llm"
)

const entityPrompt = `You extract structured railway-related information from user queries.

Return ONLY valid JSON.
Do NOT infer or assume missing information.
Do NOT guess defaults.
Extract a field ONLY if it is explicitly mentioned by the user.
If a value is not present, use null or an empty list as specified.

Supported intents (choose ONE):
- train_live_status              (live running status of a train)
- train_schedule                 (timetable / schedule of a train)
- trains_between_stations        (trains running between two stations)
- seat_availability              (seat/berth availability enquiry)
- fare_enquiry                   (ticket fare enquiry)
- pnr_status                     (PNR booking status)
- live_station                   (live arrivals/departures at a station)
- trains_by_station              (list of trains passing a station)
- search_train                   (search trains by name or number)
- search_station                 (search stations by name)
- unknown

JSON schema:
{
  "intent": string,

  "train_numbers": [string],        // 5-digit train numbers only
  "pnr_numbers": [string],          // 10-digit PNR numbers only

  "stations": [string],             // station names or codes exactly as mentioned

  "journey": {
    "from": string | null,          // source station name/code if explicitly mentioned
    "to": string | null             // destination station name/code if explicitly mentioned
  },

  "date": string | null,            // travel date if mentioned (keep original format)
  "class_type": string | null,      // class if mentioned (e.g., 2A, 3A, SL, CC)
  "quota": string | null,           // quota if mentioned (e.g., GN, Tatkal)
  "hours": integer | null           // time window in hours if explicitly mentioned
}

Important rules:
- Do NOT convert station names to codes.
- Do NOT normalize dates or class names.
- Do NOT infer intent from missing data.
- Do NOT fill defaults.
- If multiple values exist, extract all where applicable.`

// extraction is the raw LLM output before resolution.
type extraction struct {
	Intent       string   `json:"intent"`
	TrainNumbers []string `json:"train_numbers"`
	PNRNumbers   []string `json:"pnr_numbers"`
	Stations     []string `json:"stations"`
	Journey      struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"journey"`
	Date      string `json:"date"`
	ClassType string `json:"class_type"`
	Quota     string `json:"quota"`
	Hours     *int   `json:"hours"`
}

// extractor maps free text to a structured intent plus raw entities.
type extractor struct {
	llm llm.Client
}

func (x *extractor) extract(ctx context.Context, query string) (*extraction, error) {
	out, err := x.llm.Complete(ctx, &llm.Request{
		System:      entityPrompt,
		User:        query,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("entity extraction: %w", err)
	}
	parsed, err := llm.DecodeJSON[extraction](out)
	if err != nil {
		return nil, fmt.Errorf("entity extraction: %w", err)
	}
	return parsed, nil
}
