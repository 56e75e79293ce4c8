package actions

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
)

const maxSubjectLen = 120

// ticketAction opens a support ticket from the submission.
type ticketAction struct {
	store LeadStore
}

func (a *ticketAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	sub := inv.Submission
	email := sub.Field("email")
	if email == "" {
		return "", fmt.Errorf("submission has no email address")
	}

	message := sub.Field("message")
	subject := message
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	if subject == "" {
		subject = "Support request"
	}

	id, err := a.store.CreateTicket(ctx, repository.Ticket{
		Email:   email,
		Name:    fullName(sub),
		Subject: subject,
		Message: message,
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
