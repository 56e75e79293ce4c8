package engine

import (
	"fmt"
	"os"
	"sync"

	"realty_leads_backend/platform/apperr"

	"gopkg.in/yaml.v3"
)

// Rule actions applied when a conditional rule matches.
const (
	RuleAddTeamAssignment = "add_team_assignment"
	RuleAddCreateTicket   = "add_create_ticket"
	RuleRaisePriority     = "raise_priority"
	RuleSkipDatabase      = "skip_database"
)

// Registry holds the named route configurations. Stored entries are
// never handed out directly: Resolve always returns a deep copy so rule
// application cannot corrupt shared state.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]*RouteConfig
}

// NewRegistry builds a registry seeded with the built-in routes.
func NewRegistry() *Registry {
	r := &Registry{routes: make(map[string]*RouteConfig)}
	for _, route := range defaultRoutes() {
		r.routes[route.Name] = route
	}
	return r
}

// Resolve returns a deep copy of the named route, or a not-found error
// for unknown names.
func (r *Registry) Resolve(name string) (*RouteConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[name]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("route %q is not registered", name))
	}
	return route.Clone(), nil
}

// Has reports whether a route name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[name]
	return ok
}

// Names returns the registered route names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	return names
}

// Register adds or replaces a route configuration.
func (r *Registry) Register(route *RouteConfig) error {
	if route == nil || route.Name == "" {
		return apperr.Validation("route must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.Name] = route.Clone()
	return nil
}

// LoadFile merges route definitions from a YAML file over the built-in
// routes. File entries replace same-named defaults wholesale.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.Wrap(apperr.KindConfig, "read routes file", err)
	}

	var doc struct {
		Routes []*RouteConfig `yaml:"routes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return apperr.Wrap(apperr.KindConfig, "parse routes file", err)
	}

	for _, route := range doc.Routes {
		if err := r.Register(route); err != nil {
			return err
		}
	}
	return nil
}

// ApplyRules evaluates the route's conditional rules against the
// submission and applies the matching mutations to the given route copy.
// The copy must come from Resolve; the registry's stored entry is never
// touched. Unknown rule actions are ignored.
func ApplyRules(route *RouteConfig, matched func(ConditionalRule) bool) {
	for _, rule := range route.ConditionalRules {
		if !matched(rule) {
			continue
		}
		switch rule.Action {
		case RuleAddTeamAssignment:
			appendAction(route, ActionTeamAssignment)
		case RuleAddCreateTicket:
			appendAction(route, ActionCreateTicket)
		case RuleRaisePriority:
			route.Priority++
		case RuleSkipDatabase:
			route.SkipDatabase = true
		}
	}
}

func appendAction(route *RouteConfig, action string) {
	for _, existing := range route.Actions {
		if existing == action {
			return
		}
	}
	route.Actions = append(route.Actions, action)
}

// defaultRoutes are the built-in routing policies. A routes file can
// override any of them by name.
func defaultRoutes() []*RouteConfig {
	return []*RouteConfig{
		{
			Name:           RouteLeadCapture,
			Actions:        []string{ActionDatabase, ActionEmailNotification, ActionFollowupBoss},
			Priority:       1,
			EmailTemplate:  "lead_capture",
			SuccessMessage: "Thanks for reaching out! We'll be in touch shortly.",
		},
		{
			Name:           RoutePropertyInquiry,
			Actions:        []string{ActionDatabase, ActionEmailNotification, ActionAgentNotification, ActionFollowupBoss},
			Priority:       2,
			EmailTemplate:  "property_inquiry",
			SuccessMessage: "Thanks for your interest! An agent will contact you about this property.",
			ConditionalRules: []ConditionalRule{
				{Field: FieldListingPrice, Operator: OpGreater, Value: "1000000", Action: RuleAddTeamAssignment},
			},
		},
		{
			Name:           RouteHomeValuation,
			Actions:        []string{ActionDatabase, ActionEmailNotification, ActionTeamAssignment},
			Priority:       2,
			EmailTemplate:  "home_valuation",
			SuccessMessage: "Your valuation request is in. Expect your report within one business day.",
		},
		{
			Name:           RouteShowingRequest,
			Actions:        []string{ActionDatabase, ActionCalendlyBooking, ActionEmailNotification, ActionAgentNotification},
			Priority:       3,
			EmailTemplate:  "showing_request",
			SuccessMessage: "Showing request received! Pick a time that works for you from the link in your email.",
			EnableCalendly: true,
			Calendly:       &CalendlySettings{DurationMinutes: 30, BufferMinutes: 15, CalendarType: "showings"},
			ConditionalRules: []ConditionalRule{
				{Field: FieldTimeOfDay, Operator: OpOutsideBizHours, Action: RuleRaisePriority},
			},
		},
		{
			Name:           RouteSupportTicket,
			Actions:        []string{ActionCreateTicket, ActionEmailNotification},
			Priority:       1,
			EmailTemplate:  "support_ticket",
			SuccessMessage: "Your ticket has been created. Our team will follow up by email.",
			SkipDatabase:   true,
		},
	}
}

// DefaultFormRoutes is the built-in form-id to route mapping used when no
// routes file provides one.
func DefaultFormRoutes() map[string]string {
	return map[string]string{
		"contact-form":     RouteLeadCapture,
		"property-inquiry": RoutePropertyInquiry,
		"home-valuation":   RouteHomeValuation,
		"schedule-showing": RouteShowingRequest,
		"support-request":  RouteSupportTicket,
	}
}
