package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Condition operators.
const (
	OpEqual            = "=="
	OpNotEqual         = "!="
	OpGreater          = ">"
	OpLess             = "<"
	OpGreaterOrEqual   = ">="
	OpLessOrEqual      = "<="
	OpContains         = "contains"
	OpNotContains      = "not_contains"
	OpOutsideBizHours  = "outside_business_hours"
	OpIsWeekend        = "is_weekend"
)

// Synthetic fields resolved at evaluation time rather than from the
// submission.
const (
	FieldTimeOfDay    = "time_of_day"
	FieldListingPrice = "listing_price"
)

// PriceLookup resolves the price of a listing. Used only by the
// listing_price synthetic field.
type PriceLookup interface {
	GetListingPrice(ctx context.Context, listingID string) (float64, error)
}

// Evaluator evaluates conditional rules against a submission. The clock
// is injected so time-based predicates are testable; rules deliberately
// evaluate "now", not the submission timestamp.
type Evaluator struct {
	prices             PriceLookup
	businessHoursStart int
	businessHoursEnd   int

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// NewEvaluator creates an evaluator with the given business-hours window
// (start inclusive, end exclusive, 24h clock).
func NewEvaluator(prices PriceLookup, startHour, endHour int) *Evaluator {
	return &Evaluator{
		prices:             prices,
		businessHoursStart: startHour,
		businessHoursEnd:   endHour,
		Now:                time.Now,
	}
}

// Evaluate returns whether the rule's predicate holds for the submission.
// Evaluation is side-effect free and fail-closed: unknown operators and
// unresolvable fields yield false, never an error.
func (e *Evaluator) Evaluate(ctx context.Context, sub *Submission, rule ConditionalRule) bool {
	switch rule.Operator {
	case OpOutsideBizHours:
		hour := e.now().Hour()
		return hour < e.businessHoursStart || hour >= e.businessHoursEnd
	case OpIsWeekend:
		day := e.now().Weekday()
		return day == time.Saturday || day == time.Sunday
	}

	value := e.resolveField(ctx, sub, rule.Field)

	switch rule.Operator {
	case OpEqual:
		return value == rule.Value
	case OpNotEqual:
		return value != rule.Value
	case OpGreater:
		return toFloat(value) > toFloat(rule.Value)
	case OpLess:
		return toFloat(value) < toFloat(rule.Value)
	case OpGreaterOrEqual:
		return toFloat(value) >= toFloat(rule.Value)
	case OpLessOrEqual:
		return toFloat(value) <= toFloat(rule.Value)
	case OpContains:
		return rule.Value != "" && strings.Contains(strings.ToLower(value), strings.ToLower(rule.Value))
	case OpNotContains:
		return !strings.Contains(strings.ToLower(value), strings.ToLower(rule.Value))
	default:
		// Fail closed on operators this version does not know.
		return false
	}
}

// InBusinessHours reports whether the given instant falls inside the
// configured window.
func (e *Evaluator) InBusinessHours(t time.Time) bool {
	hour := t.Hour()
	return hour >= e.businessHoursStart && hour < e.businessHoursEnd
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// resolveField resolves a rule field: synthetic fields first, then
// dot-notation metadata paths, then canonical submission fields. Missing
// values resolve to the empty string.
func (e *Evaluator) resolveField(ctx context.Context, sub *Submission, field string) string {
	switch field {
	case FieldTimeOfDay:
		return e.now().Format("15:04")
	case FieldListingPrice:
		listingID := sub.ListingRef()
		if listingID == "" || e.prices == nil {
			return "0"
		}
		price, err := e.prices.GetListingPrice(ctx, listingID)
		if err != nil {
			return "0"
		}
		return strconv.FormatFloat(price, 'f', -1, 64)
	}

	if path, ok := strings.CutPrefix(field, "metadata."); ok {
		return resolveMetadata(sub.Metadata, path)
	}

	return sub.Field(field)
}

func resolveMetadata(meta Metadata, path string) string {
	switch path {
	case "source_url":
		return meta.SourceURL
	case "ip_address":
		return meta.IPAddress
	case "user_agent":
		return meta.UserAgent
	case "form_id":
		return meta.FormID
	case "route_type":
		return meta.RouteType
	case "timestamp":
		if meta.Timestamp.IsZero() {
			return ""
		}
		return meta.Timestamp.Format(time.RFC3339)
	}
	if strings.HasPrefix(path, "utm_") {
		return meta.UTM[path]
	}
	return ""
}

var clockValueRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// toFloat coerces a value for numeric comparison. Clock values ("17:30")
// become fractional hours so time_of_day rules compare naturally;
// everything non-numeric coerces to 0.
func toFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if m := clockValueRegex.FindStringSubmatch(value); m != nil {
		var hours, minutes float64
		fmt.Sscanf(m[1], "%f", &hours)
		fmt.Sscanf(m[2], "%f", &minutes)
		return hours + minutes/60
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
