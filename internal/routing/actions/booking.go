package actions

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/scheduling"
)

// bookingAction builds the Calendly booking link for showing routes. The
// result value is the link itself so the confirmation email can embed it.
type bookingAction struct {
	links *scheduling.LinkBuilder
}

func (a *bookingAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	if a.links == nil || !a.links.Enabled() {
		return "", fmt.Errorf("booking links not configured")
	}
	if !inv.Route.EnableCalendly {
		return "", fmt.Errorf("route %s does not enable booking", inv.Route.Name)
	}

	calendarType := ""
	duration := 0
	if inv.Route.Calendly != nil {
		calendarType = inv.Route.Calendly.CalendarType
		duration = inv.Route.Calendly.DurationMinutes
	}

	sub := inv.Submission
	return a.links.BookingLink(calendarType, duration, fullName(sub), sub.Field("email"))
}
