package actions

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/routing/engine"
)

// teamAction assigns the lead to the next team member in a database
// backed round robin. The stored lead (when the database action ran
// first) is updated with the assignee.
type teamAction struct {
	store   LeadStore
	members []string
}

func (a *teamAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	if len(a.members) == 0 {
		return "", fmt.Errorf("no team members configured")
	}

	position, err := a.store.NextRotationPosition(ctx)
	if err != nil {
		return "", err
	}
	member := a.members[position%int64(len(a.members))]

	if leadID, ok := storedLeadID(inv); ok {
		if err := a.store.AssignLead(ctx, leadID, member); err != nil {
			return "", err
		}
	}
	return member, nil
}
