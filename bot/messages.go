package bot

import "strings"

// linkReason selects the framing line shown above supplementary links.
type linkReason string

const (
	reasonRagModerate   linkReason = "rag_moderate"
	reasonAPIStale      linkReason = "api_stale"
	reasonAPIUnknown    linkReason = "api_unknown"
	reasonGeneralInfo   linkReason = "general_info"
	reasonAPINotWorking linkReason = "api_not_working"
)

func (r linkReason) text() string {
	switch r {
	case reasonRagModerate:
		return "This answer is based on available railway rules. For official confirmation or additional details, please refer to:"
	case reasonAPIStale:
		return "The available data may be outdated. For the latest official information, please refer to:"
	case reasonAPIUnknown:
		return "For authoritative and up-to-date information, please refer to:"
	case reasonGeneralInfo:
		return "For more detailed or official information, you may also refer to:"
	case reasonAPINotWorking:
		return "The API is currently not working. For more information, please refer to:"
	}
	return "For more information, please refer to:"
}

// fieldLabels maps missing entity field keys to human-readable labels.
var fieldLabels = map[string]string{
	"train_number": "Train number",
	"from_station": "Source station",
	"to_station":   "Destination station",
	"date":         "Journey date",
	"class_type":   "Class (e.g., SL, 3A, 2A)",
	"quota":        "Quota (GN / Tatkal)",
	"station_code": "Station name",
	"pnr":          "PNR number",
	"hours":        "Time window (in hours)",
}

// needInputMessage renders the "need more info" message for missing fields.
// Unknown keys fall back to a title-cased field name.
func needInputMessage(missing []string) string {
	readable := make([]string, 0, len(missing))
	for _, key := range missing {
		label, ok := fieldLabels[key]
		if !ok {
			label = titleCase(key)
		}
		readable = append(readable, label)
	}
	return "I need a bit more information to answer this.\nMissing details: " + strings.Join(readable, ", ")
}

// titleCase turns a snake_case field key into "Title Case" words.
func titleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
