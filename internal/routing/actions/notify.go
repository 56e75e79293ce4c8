package actions

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/email"
	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/scheduling"
)

// emailAction sends the lead-facing confirmation for the route. When an
// earlier calendly_booking action produced a link, the confirmation
// carries it plus a QR code attachment.
type emailAction struct {
	sender email.Sender
}

func (a *emailAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	sub := inv.Submission
	to := sub.Field("email")
	if to == "" {
		return "", fmt.Errorf("submission has no email address")
	}

	data := email.LeadEmailData{
		FirstName: sub.Field("first_name"),
		Message:   sub.Field("message"),
		Address:   sub.Field("address"),
		ListingID: sub.ListingRef(),
	}

	var attachments []email.Attachment
	if booking, ok := inv.Result(engine.ActionCalendlyBooking); ok && booking.Succeeded && booking.Value != "" {
		data.BookingURL = booking.Value
		if png, err := scheduling.QRCodePNG(booking.Value); err == nil {
			attachments = append(attachments, email.Attachment{FileName: "book-your-showing.png", Content: png})
		}
	}

	if err := a.sender.SendLeadConfirmation(ctx, to, inv.Route.EmailTemplate, data, attachments...); err != nil {
		return "", err
	}
	return "sent to " + to, nil
}

// agentAction alerts the internal inbox about a new lead.
type agentAction struct {
	sender email.Sender
	inbox  string
}

func (a *agentAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	if a.inbox == "" {
		return "", fmt.Errorf("agent inbox not configured")
	}

	sub := inv.Submission
	if err := a.sender.SendAgentNotification(ctx, a.inbox, email.AgentEmailData{
		LeadName:  fullName(sub),
		LeadEmail: sub.Field("email"),
		LeadPhone: sub.Field("phone"),
		Route:     inv.Route.Name,
		Score:     sub.LeadScore,
		Message:   sub.Field("message"),
		ListingID: sub.ListingRef(),
		SourceURL: sub.Metadata.SourceURL,
	}); err != nil {
		return "", err
	}
	return "sent to " + a.inbox, nil
}
