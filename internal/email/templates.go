package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// leadTemplates maps a route's email_template name to its HTML file.
// Unknown names fall back to the generic lead_capture template so a
// custom route without its own template still confirms.
var leadTemplates = map[string]string{
	"lead_capture":     "lead_capture.html",
	"property_inquiry": "property_inquiry.html",
	"home_valuation":   "home_valuation.html",
	"showing_request":  "showing_request.html",
	"support_ticket":   "support_ticket.html",
}

func leadTemplateFile(name string) string {
	if file, ok := leadTemplates[name]; ok {
		return file
	}
	return "lead_capture.html"
}

type leadEmailView struct {
	Title      string
	Heading    string
	FirstName  string
	Message    string
	Address    string
	ListingID  string
	BookingURL string
}

type agentEmailView struct {
	Title     string
	Heading   string
	LeadName  string
	LeadEmail string
	LeadPhone string
	Route     string
	Score     int
	Message   string
	ListingID string
	SourceURL string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
