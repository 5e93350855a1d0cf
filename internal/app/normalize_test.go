package app

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNormalizeHandoffWrapDepths(t *testing.T) {
	inner := `{"baseline_id":"base_abc","project_name":"Refinery expansion","mod_total":125000}`
	cases := []struct {
		name string
		body string
	}{
		{"bare", inner},
		{"wrapped once", fmt.Sprintf(`{"payload":%s}`, inner)},
		{"wrapped twice", fmt.Sprintf(`{"payload":{"payload":%s}}`, inner)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := NormalizeHandoff([]byte(tc.body))
			if err != nil {
				t.Fatalf("NormalizeHandoff() error = %v", err)
			}
			if normalized.BaselineID != "base_abc" {
				t.Fatalf("baseline = %q", normalized.BaselineID)
			}
			if normalized.ProjectName != "Refinery expansion" {
				t.Fatalf("project name = %q", normalized.ProjectName)
			}
			if normalized.ModTotal != 125000 {
				t.Fatalf("mod total = %v", normalized.ModTotal)
			}
		})
	}
}

func TestNormalizeHandoffTooDeeplyWrapped(t *testing.T) {
	body := `{"payload":{"payload":{"payload":{"baseline_id":"base_abc"}}}}`
	_, err := NormalizeHandoff([]byte(body))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for triple wrapping, got %v", err)
	}
}

func TestNormalizeHandoffKeyAliases(t *testing.T) {
	body := `{"baselineId":"base_abc","projectName":"Refinery","clientName":"Acme","pctIngenieros":40,"pctSdm":10}`
	normalized, err := NormalizeHandoff([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeHandoff() error = %v", err)
	}
	if normalized.BaselineID != "base_abc" || normalized.ClientName != "Acme" {
		t.Fatalf("camelCase aliases not honored: %+v", normalized)
	}
	if normalized.PctIngenieros != 40 || normalized.PctSDM != 10 {
		t.Fatalf("percentages wrong: %+v", normalized)
	}
}

func TestNormalizeHandoffNumericCoercion(t *testing.T) {
	body := `{"baseline_id":1234,"mod_total":"99000.50","pct_ingenieros":"37.5"}`
	normalized, err := NormalizeHandoff([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeHandoff() error = %v", err)
	}
	if normalized.BaselineID != "1234" {
		t.Fatalf("unquoted baseline id not coerced: %q", normalized.BaselineID)
	}
	if normalized.ModTotal != 99000.50 {
		t.Fatalf("string mod_total not parsed: %v", normalized.ModTotal)
	}
	if normalized.PctIngenieros != 37.5 {
		t.Fatalf("string percentage not parsed: %v", normalized.PctIngenieros)
	}
}

func TestNormalizeHandoffMissingBaseline(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"absent", `{"project_name":"Refinery"}`},
		{"empty string", `{"baseline_id":"  "}`},
		{"null", `{"baseline_id":null}`},
		{"wrapper with no body", `{"payload":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeHandoff([]byte(tc.body))
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, field := range validation.Fields {
				if strings.Contains(field, "baseline_id") {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected baseline_id in field errors: %v", validation.Fields)
			}
		})
	}
}

func TestNormalizeHandoffInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"negative total", `{"baseline_id":"b","mod_total":-1}`, "mod_total"},
		{"percentage over 100", `{"baseline_id":"b","pct_sdm":101}`, "pct_sdm"},
		{"non-numeric total", `{"baseline_id":"b","mod_total":"lots"}`, "mod_total"},
		{"bad date", `{"baseline_id":"b","accepted_at":"yesterday"}`, "accepted_at"},
		{"not an object", `[1,2,3]`, "JSON object"},
		{"string wrapper", `{"payload":"nope"}`, "payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeHandoff([]byte(tc.body))
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestNormalizeHandoffCollectsAllFieldErrors(t *testing.T) {
	body := `{"mod_total":-5,"pct_sdm":200,"accepted_at":"bad"}`
	_, err := NormalizeHandoff([]byte(body))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Fields) < 4 {
		t.Fatalf("expected all field errors reported at once, got %v", validation.Fields)
	}
}

func TestNormalizeHandoffAcceptedAt(t *testing.T) {
	body := `{"baseline_id":"b","accepted_at":"2026-03-01T12:30:00+02:00","accepted_by":"cfo@example.com"}`
	normalized, err := NormalizeHandoff([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeHandoff() error = %v", err)
	}
	if normalized.AcceptedAt == nil {
		t.Fatal("accepted_at not parsed")
	}
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if !normalized.AcceptedAt.Equal(want) {
		t.Fatalf("accepted_at = %v, want %v", normalized.AcceptedAt, want)
	}
	if normalized.AcceptedBy != "cfo@example.com" {
		t.Fatalf("accepted_by = %q", normalized.AcceptedBy)
	}
}

func TestNormalizeHandoffRawIsInnermostBody(t *testing.T) {
	body := `{"payload":{"baseline_id":"base_abc","extra":"kept"}}`
	normalized, err := NormalizeHandoff([]byte(body))
	if err != nil {
		t.Fatalf("NormalizeHandoff() error = %v", err)
	}
	raw := string(normalized.Raw)
	if strings.Contains(raw, `"payload"`) {
		t.Fatalf("wrapper leaked into canonical body: %s", raw)
	}
	if !strings.Contains(raw, `"extra":"kept"`) {
		t.Fatalf("unknown fields dropped from canonical body: %s", raw)
	}
}
