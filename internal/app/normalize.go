package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizedHandoff is the canonical shape every submission is reduced to
// before resolution. Nothing downstream of the normalizer looks at the raw
// body again.
type NormalizedHandoff struct {
	BaselineID    string
	ProjectName   string
	ProjectCode   string
	ClientName    string
	Currency      string
	Description   string
	Responsible   string
	ModTotal      float64
	PctIngenieros float64
	PctSDM        float64
	AcceptedBy    string
	AcceptedAt    *time.Time
	Raw           json.RawMessage
}

// maxWrapDepth bounds how many `payload` wrapper levels are peeled off.
// Historical clients sent the body bare, wrapped once, or wrapped twice.
const maxWrapDepth = 2

// NormalizeHandoff unwraps and validates a raw submission body. It returns
// a ValidationError when no baseline id can be extracted or a numeric or
// date field is malformed.
func NormalizeHandoff(raw []byte) (NormalizedHandoff, error) {
	body, err := unwrapPayload(raw)
	if err != nil {
		return NormalizedHandoff{}, err
	}

	var fields []string
	normalized := NormalizedHandoff{
		BaselineID:  stringField(body, "baseline_id", "baselineId"),
		ProjectName: stringField(body, "project_name", "projectName", "name"),
		ProjectCode: stringField(body, "project_code", "projectCode", "code"),
		ClientName:  stringField(body, "client_name", "clientName"),
		Currency:    stringField(body, "currency"),
		Description: stringField(body, "description"),
		Responsible: stringField(body, "responsible"),
		AcceptedBy:  stringField(body, "accepted_by", "acceptedBy"),
	}

	if normalized.BaselineID == "" {
		fields = append(fields, "baseline_id is required")
	}

	normalized.ModTotal, err = numberField(body, 0, "mod_total", "modTotal")
	if err != nil {
		fields = append(fields, err.Error())
	} else if normalized.ModTotal < 0 {
		fields = append(fields, "mod_total must not be negative")
	}

	normalized.PctIngenieros, err = numberField(body, 0, "pct_ingenieros", "pctIngenieros")
	if err != nil {
		fields = append(fields, err.Error())
	} else if normalized.PctIngenieros < 0 || normalized.PctIngenieros > 100 {
		fields = append(fields, "pct_ingenieros must be between 0 and 100")
	}

	normalized.PctSDM, err = numberField(body, 0, "pct_sdm", "pctSdm")
	if err != nil {
		fields = append(fields, err.Error())
	} else if normalized.PctSDM < 0 || normalized.PctSDM > 100 {
		fields = append(fields, "pct_sdm must be between 0 and 100")
	}

	if rawDate := stringField(body, "accepted_at", "acceptedAt"); rawDate != "" {
		parsed, err := time.Parse(time.RFC3339, rawDate)
		if err != nil {
			fields = append(fields, "accepted_at must be an RFC 3339 timestamp")
		} else {
			utc := parsed.UTC()
			normalized.AcceptedAt = &utc
		}
	}

	if len(fields) > 0 {
		return NormalizedHandoff{}, &ValidationError{Message: "invalid handoff payload", Fields: fields}
	}

	canonical, err := json.Marshal(body)
	if err != nil {
		return NormalizedHandoff{}, &ValidationError{Message: "invalid handoff payload", Fields: []string{"body is not valid JSON"}}
	}
	normalized.Raw = canonical

	return normalized, nil
}

// unwrapPayload peels up to maxWrapDepth `payload` wrapper levels off the
// body and returns the innermost object.
func unwrapPayload(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Message: "invalid handoff payload", Fields: []string{"body is required"}}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ValidationError{Message: "invalid handoff payload", Fields: []string{"body must be a JSON object"}}
	}

	for depth := 0; depth < maxWrapDepth; depth++ {
		inner, ok := body["payload"]
		if !ok {
			break
		}
		innerMap, ok := inner.(map[string]any)
		if !ok {
			return nil, &ValidationError{Message: "invalid handoff payload", Fields: []string{"payload wrapper must be a JSON object"}}
		}
		body = innerMap
	}

	return body, nil
}

// stringField returns the first non-empty value among the given key
// aliases. Bare numbers are accepted and rendered back to strings since
// some clients send identifiers unquoted.
func stringField(body map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := body[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// numberField returns the first present value among the given key aliases,
// accepting both JSON numbers and numeric strings.
func numberField(body map[string]any, fallback float64, keys ...string) (float64, error) {
	for _, key := range keys {
		value, ok := body[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, fmt.Errorf("%s must be a number", key)
			}
			return parsed, nil
		default:
			return 0, fmt.Errorf("%s must be a number", key)
		}
	}
	return fallback, nil
}
