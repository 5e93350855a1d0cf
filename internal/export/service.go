// Package export renders project budget reports as PDFs.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPDFDependencyMissing indicates the headless Chrome runtime is
// unavailable.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")

// Service renders reports from the resolved project payloads the API
// layer already produces.
type Service struct{}

// NewService creates a new export service.
func NewService() *Service {
	return &Service{}
}

// ProjectReportPDF renders a one-page budget report for the project with
// its handoff history.
func (s *Service) ProjectReportPDF(ctx context.Context, project map[string]any, handoffs []map[string]any) ([]byte, error) {
	html, err := RenderReportHTML(reportData(project, handoffs))
	if err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return renderPDF(ctx, html)
}

func reportData(project map[string]any, handoffs []map[string]any) TemplateData {
	data := TemplateData{
		ProjectName:   stringValue(project, "name"),
		ProjectCode:   stringValue(project, "code"),
		ClientName:    stringValue(project, "clientName"),
		Currency:      stringValue(project, "currency"),
		Description:   stringValue(project, "description"),
		BaselineID:    stringValue(project, "baselineId"),
		AcceptedBy:    stringValue(project, "acceptedBy"),
		AcceptedAt:    stringValue(project, "acceptedAt"),
		ModTotal:      floatValue(project, "modTotal"),
		PctIngenieros: floatValue(project, "pctIngenieros"),
		PctSDM:        floatValue(project, "pctSdm"),
		GeneratedAt:   time.Now().UTC(),
	}
	if data.ProjectName == "" {
		data.ProjectName = stringValue(project, "id")
	}
	for _, handoff := range handoffs {
		data.Handoffs = append(data.Handoffs, TemplateHandoff{
			ID:         stringValue(handoff, "id"),
			BaselineID: stringValue(handoff, "baselineId"),
			Actor:      stringValue(handoff, "actor"),
			CreatedAt:  stringValue(handoff, "createdAt"),
		})
	}
	return data
}

func stringValue(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

func floatValue(payload map[string]any, key string) float64 {
	value, _ := payload[key].(float64)
	return value
}
