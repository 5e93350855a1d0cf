package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
	}

	content, err := templateFS.ReadFile("templates/report.html")
	if err != nil {
		reportTemplate = template.Must(template.New("report").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}
	reportTemplate = template.Must(template.New("report").Funcs(funcMap).Parse(string(content)))
}

// TemplateData holds data for report template rendering.
type TemplateData struct {
	ProjectName   string
	ProjectCode   string
	ClientName    string
	Currency      string
	Description   string
	BaselineID    string
	AcceptedBy    string
	AcceptedAt    string
	ModTotal      float64
	PctIngenieros float64
	PctSDM        float64
	GeneratedAt   time.Time
	Handoffs      []TemplateHandoff
}

// TemplateHandoff holds one handoff row for the history table.
type TemplateHandoff struct {
	ID         string
	BaselineID string
	Actor      string
	CreatedAt  string
}

// RenderReportHTML renders the report template with the given data.
func RenderReportHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load.
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.ProjectName}}</title></head>
<body>
  <h1>{{.ProjectName}}</h1>
  {{if .BaselineID}}<p>Baseline {{.BaselineID}}</p>{{end}}
  <p>{{.Currency}} {{printf "%.2f" .ModTotal}}</p>
</body>
</html>`
