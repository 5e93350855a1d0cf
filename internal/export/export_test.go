package export

import (
	"strings"
	"testing"
)

func TestRenderReportHTML(t *testing.T) {
	project := map[string]any{
		"id":            "P-aa11bb22",
		"name":          "Refinery expansion",
		"code":          "REF-01",
		"clientName":    "Acme",
		"currency":      "USD",
		"baselineId":    "base_abc",
		"acceptedBy":    "cfo@example.com",
		"modTotal":      125000.0,
		"pctIngenieros": 40.0,
		"pctSdm":        10.0,
	}
	handoffs := []map[string]any{
		{"id": "handoff_1", "baselineId": "base_abc", "actor": "alice@example.com", "createdAt": "2026-02-10T09:00:00Z"},
	}

	html, err := RenderReportHTML(reportData(project, handoffs))
	if err != nil {
		t.Fatalf("RenderReportHTML() error = %v", err)
	}

	for _, want := range []string{
		"Refinery expansion",
		"base_abc",
		"cfo@example.com",
		"USD 125000.00",
		"40.0%",
		"handoff_1",
		"alice@example.com",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderReportHTMLEscapesMarkup(t *testing.T) {
	project := map[string]any{
		"id":          "P-1",
		"name":        "<script>alert(1)</script>",
		"currency":    "USD",
		"description": "a & b",
	}

	html, err := RenderReportHTML(reportData(project, nil))
	if err != nil {
		t.Fatalf("RenderReportHTML() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("project name not escaped")
	}
	if !strings.Contains(html, "a &amp; b") {
		t.Fatal("description not escaped")
	}
}

func TestRenderReportHTMLFallsBackToProjectID(t *testing.T) {
	html, err := RenderReportHTML(reportData(map[string]any{"id": "P-aa11bb22", "currency": "USD"}, nil))
	if err != nil {
		t.Fatalf("RenderReportHTML() error = %v", err)
	}
	if !strings.Contains(html, "P-aa11bb22") {
		t.Fatal("expected project id as title fallback")
	}
	if strings.Contains(html, "Baseline <strong>") {
		t.Fatal("baseline block rendered without a baseline")
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a b", "a%20b"},
		{"<p>", "%3Cp%3E"},
		{"100%", "100%25"},
	}
	for _, tc := range cases {
		if got := percentEncodeForDataURL(tc.in); got != tc.want {
			t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
