package search

import (
	"testing"

	"finz/api/internal/store"
)

func TestProjectRecordMapping(t *testing.T) {
	record := projectRecord(store.Project{
		ID:          "P-aa11bb22",
		Name:        "Refinery expansion",
		Code:        "REF-01",
		ClientName:  "Acme",
		Description: "Phase two of the refinery build-out",
		BaselineID:  "base_abc",
		Currency:    "USD",
	})
	if record.ID != "P-aa11bb22" || record.BaselineID != "base_abc" {
		t.Fatalf("record = %+v", record)
	}
	if record.Name != "Refinery expansion" || record.ClientName != "Acme" {
		t.Fatalf("record = %+v", record)
	}
}

func TestSearchPayloadNeverReturnsNilResults(t *testing.T) {
	payload := searchPayload("refinery", nil, 0)
	results, ok := payload["results"].([]Result)
	if !ok {
		t.Fatalf("results type = %T", payload["results"])
	}
	if results == nil {
		t.Fatal("results must be an empty slice, not nil")
	}
	if payload["query"] != "refinery" || payload["total"] != 0 {
		t.Fatalf("payload = %v", payload)
	}
}
