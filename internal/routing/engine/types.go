// Package engine implements the lead routing and scoring engine: field
// extraction, route classification, conditional rules, lead scoring, and
// the action pipeline. The engine is pure orchestration logic; every side
// effect (persistence, mail, CRM, scheduling) is behind a collaborator
// interface owned by the caller.
package engine

import "time"

// Metadata carries request-level context captured alongside the form
// fields. It is populated by the HTTP layer and extended by the extractor
// (UTM capture).
type Metadata struct {
	SourceURL string
	IPAddress string
	UserAgent string
	Timestamp time.Time
	FormID    string
	// RouteType is an explicit route override, or "auto" / empty for
	// automatic classification.
	RouteType string
	UTM       map[string]string
}

// Submission is the canonical, normalized form record. Once extracted it
// is treated as immutable; the only later write is the lead score.
type Submission struct {
	Fields    map[string]string
	Metadata  Metadata
	LeadScore int
}

// Field returns the canonical field value, or "" when absent.
func (s *Submission) Field(name string) string {
	return s.Fields[name]
}

// Has reports whether the canonical field is present and non-empty.
func (s *Submission) Has(name string) bool {
	return s.Fields[name] != ""
}

// ListingRef returns the first listing reference field present, if any.
func (s *Submission) ListingRef() string {
	for _, name := range []string{"listing_id", "property_id"} {
		if v := s.Fields[name]; v != "" {
			return v
		}
	}
	return ""
}

// CalendlySettings configures booking link generation for a route.
type CalendlySettings struct {
	DurationMinutes int    `yaml:"duration_minutes"`
	BufferMinutes   int    `yaml:"buffer_minutes"`
	CalendarType    string `yaml:"calendar_type"`
}

// ConditionalRule is a predicate over a submission plus the route mutation
// applied when it holds. Evaluation is side-effect free; only application
// mutates the (derived) route.
type ConditionalRule struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    string `yaml:"value"`
	Action   string `yaml:"action"`
}

// RouteConfig is a named routing policy. Registry entries are shared and
// read-only; per-submission work always happens on a Clone.
type RouteConfig struct {
	Name             string            `yaml:"name"`
	Actions          []string          `yaml:"actions"`
	Priority         int               `yaml:"priority"`
	EmailTemplate    string            `yaml:"email_template"`
	SuccessMessage   string            `yaml:"success_message"`
	EnableCalendly   bool              `yaml:"enable_calendly"`
	Calendly         *CalendlySettings `yaml:"calendly_settings"`
	ConditionalRules []ConditionalRule `yaml:"conditional_rules"`
	SkipDatabase     bool              `yaml:"skip_database"`
}

// Clone returns a deep copy safe for per-submission mutation.
func (r *RouteConfig) Clone() *RouteConfig {
	clone := *r
	clone.Actions = append([]string(nil), r.Actions...)
	clone.ConditionalRules = append([]ConditionalRule(nil), r.ConditionalRules...)
	if r.Calendly != nil {
		settings := *r.Calendly
		clone.Calendly = &settings
	}
	return &clone
}

// ActionResult is the per-action outcome collected by the pipeline.
type ActionResult struct {
	Action    string `json:"action"`
	Succeeded bool   `json:"succeeded"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
}
