package engine

import "strings"

// Built-in route names.
const (
	RouteLeadCapture     = "lead_capture"
	RoutePropertyInquiry = "property_inquiry"
	RouteHomeValuation   = "home_valuation"
	RouteShowingRequest  = "showing_request"
	RouteSupportTicket   = "support_ticket"
)

// routeTypeAuto is the sentinel meaning "no explicit override".
const routeTypeAuto = "auto"

// keywordFamilies are checked against the message field in fixed priority
// order; the first family with a hit wins.
var keywordFamilies = []struct {
	route    string
	keywords []string
}{
	{RouteHomeValuation, []string{"valuation", "appraisal", "estimate", "home value", "what is my house worth", "cma"}},
	{RouteShowingRequest, []string{"showing", "tour", "viewing", "open house", "walkthrough", "see the property"}},
	{RouteSupportTicket, []string{"help", "support", "problem", "issue", "complaint", "billing"}},
}

// Classifier resolves a submission to a route name. Explicit signals
// outrank inferred ones, and among inferred signals structural fields
// outrank free-text keyword matching.
type Classifier struct {
	formRoutes map[string]string
}

// NewClassifier builds a classifier with an exact form-id to route-name
// mapping.
func NewClassifier(formRoutes map[string]string) *Classifier {
	if formRoutes == nil {
		formRoutes = map[string]string{}
	}
	return &Classifier{formRoutes: formRoutes}
}

// Classify returns the route name for the submission. Resolution is
// ordered and the first matching rule wins:
//
//  1. explicit route_type override (anything but "auto"), returned
//     verbatim — existence against the registry is the caller's problem
//  2. exact form-id mapping
//  3. a listing reference implies a property inquiry
//  4. an agent reference implies plain lead capture
//  5. message keyword families, valuation before showing before support
//  6. lead capture fallback
func (c *Classifier) Classify(sub *Submission) string {
	if override := strings.TrimSpace(sub.Metadata.RouteType); override != "" && !strings.EqualFold(override, routeTypeAuto) {
		return override
	}

	if sub.Metadata.FormID != "" {
		if route, ok := c.formRoutes[sub.Metadata.FormID]; ok {
			return route
		}
	}

	if sub.ListingRef() != "" {
		return RoutePropertyInquiry
	}

	if sub.Has("agent_id") {
		return RouteLeadCapture
	}

	if message := strings.ToLower(sub.Field("message")); message != "" {
		for _, family := range keywordFamilies {
			for _, keyword := range family.keywords {
				if strings.Contains(message, keyword) {
					return family.route
				}
			}
		}
	}

	return RouteLeadCapture
}
