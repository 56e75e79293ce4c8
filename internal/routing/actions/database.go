package actions

import (
	"context"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
)

const skippedValue = "skipped"

// databaseAction persists the submission as a lead. The result value is
// the lead id so later actions in the run can reference the stored row.
type databaseAction struct {
	store LeadStore
}

func (a *databaseAction) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	if inv.Route.SkipDatabase {
		return skippedValue, nil
	}

	sub := inv.Submission
	id, err := a.store.CreateLead(ctx, repository.Lead{
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
		IPAddress: sub.Metadata.IPAddress,
		UserAgent: sub.Metadata.UserAgent,
		FormID:    sub.Metadata.FormID,
		UTM:       sub.Metadata.UTM,
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
