// Package report renders identification results into exportable documents.
// Three formats are supported: plain text, JSON, and a standalone HTML page.
// Section order is fixed: a header (name, confidence, language, date) followed
// by one block per info category in map order.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/leaflens/leaflens/internal/plantinfo"
)

// Format selects the output document type.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported report format %q (want txt, json, or html)", s)
}

// Report carries everything needed to render one document.
type Report struct {
	PlantName   string
	Confidence  float64
	Language    string
	GeneratedAt time.Time
	ImageURL    string
	Info        plantinfo.InfoMap
}

// Render produces the document bytes for the given format.
func (r Report) Render(format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return r.renderText(), nil
	case FormatJSON:
		return r.renderJSON()
	case FormatHTML:
		return r.renderHTML()
	}
	return nil, fmt.Errorf("unsupported report format %q", format)
}

// Filename suggests a download name: lowercase plant name with spaces
// collapsed to dashes plus a "_report" suffix.
func Filename(plantName string, format Format) string {
	name := strings.ToLower(strings.TrimSpace(plantName))
	name = strings.Join(strings.Fields(name), "-")
	if name == "" {
		name = "plant"
	}
	return name + "_report." + string(format)
}

// humanizeKey turns "medicinal_uses" into "medicinal uses".
func humanizeKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func (r Report) renderText() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Plant: %s\n", r.PlantName)
	fmt.Fprintf(&b, "Confidence: %.2f%%\n", r.Confidence*100)
	fmt.Fprintf(&b, "Language: %s\n", r.Language)
	fmt.Fprintf(&b, "Date: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("PLANT INFORMATION:\n")
	b.WriteString("==================\n\n")

	for _, key := range r.Info.Keys() {
		v, _ := r.Info.Get(key)
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(humanizeKey(key)))
		b.WriteString(v.Flatten())
		b.WriteString("\n\n")
	}

	b.WriteString("Generated by Leaf-Lens\n")
	b.WriteString("https://leaf-lens.com\n")
	return []byte(b.String())
}

func (r Report) renderJSON() ([]byte, error) {
	info, err := json.Marshal(r.Info)
	if err != nil {
		return nil, fmt.Errorf("marshal info: %w", err)
	}
	doc := struct {
		PlantName   string          `json:"plantName"`
		Confidence  float64         `json:"confidence"`
		Language    string          `json:"language"`
		Timestamp   string          `json:"timestamp"`
		Information json.RawMessage `json:"information"`
	}{
		PlantName:   r.PlantName,
		Confidence:  r.Confidence,
		Language:    r.Language,
		Timestamp:   r.GeneratedAt.Format(time.RFC3339),
		Information: info,
	}
	return json.MarshalIndent(doc, "", "  ")
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"humanize": humanizeKey,
	"percent":  func(c float64) string { return fmt.Sprintf("%.2f%%", c*100) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.PlantName}} Report | Leaf-Lens</title>
<style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
  .report-header { text-align: center; margin-bottom: 30px; padding-bottom: 20px; border-bottom: 1px solid #eaeaea; }
  .logo { font-size: 24px; font-weight: bold; color: #16a34a; margin-bottom: 10px; }
  .plant-name { font-size: 32px; margin: 10px 0; color: #16a34a; }
  .meta-info { font-size: 14px; color: #666; margin-bottom: 20px; }
  .confidence { display: inline-block; background: #e6f7ef; color: #16a34a; padding: 4px 12px; border-radius: 20px; font-weight: 500; margin-bottom: 20px; }
  .plant-image { width: 100%; max-width: 400px; margin: 0 auto 30px; display: block; border-radius: 10px; }
  .info-section { margin-bottom: 40px; }
  h2 { color: #16a34a; font-size: 24px; margin-bottom: 16px; padding-bottom: 8px; border-bottom: 2px solid #e6f7ef; }
  .info-card { background: #f9f9f9; border-radius: 8px; padding: 16px; margin-bottom: 12px; }
  .info-card h3 { margin: 0 0 10px; color: #16a34a; font-size: 18px; text-transform: capitalize; }
  .info-card p { margin: 0; color: #555; }
  footer { text-align: center; margin-top: 40px; font-size: 12px; color: #888; }
</style>
</head>
<body>
<div class="report-header">
  <div class="logo">Leaf-Lens</div>
  <h1 class="plant-name">{{.PlantName}}</h1>
  <div class="meta-info">Generated on {{.Date}} | Language: {{.Language}}</div>
  <div class="confidence">Confidence: {{percent .Confidence}}</div>
</div>
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.PlantName}}" class="plant-image">{{end}}
<div class="info-section">
  <h2>Plant Information</h2>
{{range .Sections}}  <div class="info-card">
    <h3>{{humanize .Key}}</h3>
    <p>{{.Text}}</p>
  </div>
{{end}}</div>
<footer>
  Generated by Leaf-Lens | Medicinal Plant Identification System<br>
  &copy; {{.Year}} Leaf-Lens. All rights reserved.
</footer>
</body>
</html>
`))

type htmlSection struct {
	Key  string
	Text string
}

func (r Report) renderHTML() ([]byte, error) {
	sections := make([]htmlSection, 0, r.Info.Len())
	for _, key := range r.Info.Keys() {
		v, _ := r.Info.Get(key)
		sections = append(sections, htmlSection{Key: key, Text: v.Flatten()})
	}

	data := struct {
		PlantName  string
		Confidence float64
		Language   string
		Date       string
		Year       int
		ImageURL   string
		Sections   []htmlSection
	}{
		PlantName:  r.PlantName,
		Confidence: r.Confidence,
		Language:   r.Language,
		Date:       r.GeneratedAt.Format("2006-01-02 15:04:05"),
		Year:       r.GeneratedAt.Year(),
		ImageURL:   r.ImageURL,
		Sections:   sections,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}
