// Package actions implements the built-in pipeline actions: persistence,
// notifications, CRM sync, booking links, team assignment, and tickets.
package actions

import (
	"context"

	"github.com/google/uuid"

	"realty_leads_backend/internal/email"
	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
	"realty_leads_backend/internal/scheduler"
	"realty_leads_backend/internal/scheduling"
)

// LeadStore is the persistence surface the database and team actions use.
type LeadStore interface {
	CreateLead(ctx context.Context, lead repository.Lead) (uuid.UUID, error)
	AssignLead(ctx context.Context, leadID uuid.UUID, member string) error
	CreateTicket(ctx context.Context, ticket repository.Ticket) (uuid.UUID, error)
	NextRotationPosition(ctx context.Context) (int64, error)
}

// Deps bundles the collaborators shared by the built-in actions.
type Deps struct {
	Store       LeadStore
	Sender      email.Sender
	AgentInbox  string
	CRM         scheduler.CRMEnqueuer
	Links       *scheduling.LinkBuilder
	TeamMembers []string
}

// Registry returns the built-in action handlers keyed by action name.
func Registry(deps Deps) map[string]engine.Handler {
	return map[string]engine.Handler{
		engine.ActionDatabase:          &databaseAction{store: deps.Store},
		engine.ActionEmailNotification: &emailAction{sender: deps.Sender},
		engine.ActionAgentNotification: &agentAction{sender: deps.Sender, inbox: deps.AgentInbox},
		engine.ActionFollowupBoss:      &crmSyncAction{queue: deps.CRM},
		engine.ActionCalendlyBooking:   &bookingAction{links: deps.Links},
		engine.ActionTeamAssignment:    &teamAction{store: deps.Store, members: deps.TeamMembers},
		engine.ActionCreateTicket:      &ticketAction{store: deps.Store},
	}
}

func fullName(sub *engine.Submission) string {
	first := sub.Field("first_name")
	last := sub.Field("last_name")
	if last == "" {
		return first
	}
	return first + " " + last
}

// storedLeadID extracts the lead id persisted by an earlier database
// action in the same pipeline run, if any.
func storedLeadID(inv *engine.Invocation) (uuid.UUID, bool) {
	result, ok := inv.Result(engine.ActionDatabase)
	if !ok || !result.Succeeded || result.Value == "" || result.Value == skippedValue {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(result.Value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
