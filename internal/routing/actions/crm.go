package actions

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/scheduler"
)

// crmSyncAction queues the lead for background CRM sync. The CRM API is
// never called on the intake path.
type crmSyncAction struct {
	queue scheduler.CRMEnqueuer
}

func (a *crmSyncAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	if a.queue == nil {
		return "", fmt.Errorf("crm sync not configured")
	}

	sub := inv.Submission
	payload := scheduler.CRMSyncLeadPayload{
		FirstName: sub.Field("first_name"),
		LastName:  sub.Field("last_name"),
		Email:     sub.Field("email"),
		Phone:     sub.Field("phone"),
		Message:   sub.Field("message"),
		Route:     inv.Route.Name,
		Score:     sub.LeadScore,
		ListingID: sub.ListingRef(),
		Address:   sub.Field("address"),
		SourceURL: sub.Metadata.SourceURL,
		UTM:       sub.Metadata.UTM,
	}
	if leadID, ok := storedLeadID(inv); ok {
		payload.LeadID = leadID.String()
	}

	if err := a.queue.EnqueueCRMSync(ctx, payload); err != nil {
		return "", err
	}
	return "queued", nil
}
