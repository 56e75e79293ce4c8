package actions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"realty_leads_backend/internal/email"
	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/internal/routing/repository"
	"realty_leads_backend/internal/scheduler"
	"realty_leads_backend/internal/scheduling"
	"realty_leads_backend/platform/config"
)

type fakeStore struct {
	leads    map[uuid.UUID]repository.Lead
	tickets  []repository.Ticket
	assigned map[uuid.UUID]string
	rotation int64
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:    make(map[uuid.UUID]repository.Lead),
		assigned: make(map[uuid.UUID]string),
	}
}

func (f *fakeStore) CreateLead(_ context.Context, lead repository.Lead) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.UUID{}, f.err
	}
	id := uuid.New()
	lead.ID = id
	f.leads[id] = lead
	return id, nil
}

func (f *fakeStore) AssignLead(_ context.Context, leadID uuid.UUID, member string) error {
	if f.err != nil {
		return f.err
	}
	f.assigned[leadID] = member
	return nil
}

func (f *fakeStore) CreateTicket(_ context.Context, ticket repository.Ticket) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.UUID{}, f.err
	}
	ticket.ID = uuid.New()
	f.tickets = append(f.tickets, ticket)
	return ticket.ID, nil
}

func (f *fakeStore) NextRotationPosition(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.rotation++
	return f.rotation, nil
}

type fakeSender struct {
	leadEmails  []string
	agentEmails []string
	lastData    email.LeadEmailData
	lastAgent   email.AgentEmailData
	attachments int
	err         error
}

func (f *fakeSender) SendLeadConfirmation(_ context.Context, to, _ string, data email.LeadEmailData, attachments ...email.Attachment) error {
	if f.err != nil {
		return f.err
	}
	f.leadEmails = append(f.leadEmails, to)
	f.lastData = data
	f.attachments += len(attachments)
	return nil
}

func (f *fakeSender) SendAgentNotification(_ context.Context, to string, data email.AgentEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.agentEmails = append(f.agentEmails, to)
	f.lastAgent = data
	return nil
}

type fakeQueue struct {
	payloads []scheduler.CRMSyncLeadPayload
	err      error
}

func (f *fakeQueue) EnqueueCRMSync(_ context.Context, payload scheduler.CRMSyncLeadPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func testSubmission() *engine.Submission {
	return &engine.Submission{
		Fields: map[string]string{
			"first_name": "Maria",
			"last_name":  "Cruz",
			"email":      "maria@example.com",
			"phone":      "+14155552671",
			"message":    "Interested in a showing",
			"listing_id": "42",
		},
		Metadata: engine.Metadata{
			SourceURL: "https://example.com/listings/42",
			UTM:       map[string]string{"utm_source": "google"},
		},
		LeadScore: 65,
	}
}

func invocation(sub *engine.Submission, route *engine.RouteConfig) *engine.Invocation {
	return &engine.Invocation{
		Submission: sub,
		Route:      route,
		Results:    make(map[string]engine.ActionResult),
	}
}

func TestDatabaseAction(t *testing.T) {
	store := newFakeStore()
	action := &databaseAction{store: store}

	inv := invocation(testSubmission(), &engine.RouteConfig{Name: "property_inquiry"})
	value, err := action.Execute(context.Background(), inv)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	id, err := uuid.Parse(value)
	if err != nil {
		t.Fatalf("value %q is not a lead id", value)
	}
	lead := store.leads[id]
	if lead.Email != "maria@example.com" || lead.Route != "property_inquiry" || lead.Score != 65 {
		t.Fatalf("stored lead = %+v", lead)
	}
	if lead.ListingID != "42" {
		t.Fatalf("listing id = %q", lead.ListingID)
	}
}

func TestDatabaseActionSkip(t *testing.T) {
	store := newFakeStore()
	action := &databaseAction{store: store}

	inv := invocation(testSubmission(), &engine.RouteConfig{Name: "support_ticket", SkipDatabase: true})
	value, err := action.Execute(context.Background(), inv)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if value != skippedValue {
		t.Fatalf("value = %q, want %q", value, skippedValue)
	}
	if len(store.leads) != 0 {
		t.Fatal("lead stored despite skip_database")
	}
}

func TestEmailActionWithBookingLink(t *testing.T) {
	sender := &fakeSender{}
	action := &emailAction{sender: sender}

	inv := invocation(testSubmission(), &engine.RouteConfig{Name: "showing_request", EmailTemplate: "showing_request"})
	inv.Results[engine.ActionCalendlyBooking] = engine.ActionResult{
		Action:    engine.ActionCalendlyBooking,
		Succeeded: true,
		Value:     "https://calendly.com/acme/showings-30min",
	}

	value, err := action.Execute(context.Background(), inv)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(value, "maria@example.com") {
		t.Fatalf("value = %q", value)
	}
	if sender.lastData.BookingURL != "https://calendly.com/acme/showings-30min" {
		t.Fatalf("booking url = %q", sender.lastData.BookingURL)
	}
	if sender.attachments != 1 {
		t.Fatalf("attachments = %d, want QR code", sender.attachments)
	}
}

func TestEmailActionRequiresAddress(t *testing.T) {
	action := &emailAction{sender: &fakeSender{}}
	sub := testSubmission()
	delete(sub.Fields, "email")

	if _, err := action.Execute(context.Background(), invocation(sub, &engine.RouteConfig{})); err == nil {
		t.Fatal("expected error without email field")
	}
}

func TestAgentAction(t *testing.T) {
	sender := &fakeSender{}
	action := &agentAction{sender: sender, inbox: "agents@acme.test"}

	if _, err := action.Execute(context.Background(), invocation(testSubmission(), &engine.RouteConfig{Name: "property_inquiry"})); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(sender.agentEmails) != 1 || sender.agentEmails[0] != "agents@acme.test" {
		t.Fatalf("agent emails = %v", sender.agentEmails)
	}
	if sender.lastAgent.LeadName != "Maria Cruz" || sender.lastAgent.Score != 65 {
		t.Fatalf("agent data = %+v", sender.lastAgent)
	}
}

func TestCRMSyncActionCarriesLeadID(t *testing.T) {
	queue := &fakeQueue{}
	action := &crmSyncAction{queue: queue}

	leadID := uuid.New()
	inv := invocation(testSubmission(), &engine.RouteConfig{Name: "lead_capture"})
	inv.Results[engine.ActionDatabase] = engine.ActionResult{
		Action: engine.ActionDatabase, Succeeded: true, Value: leadID.String(),
	}

	value, err := action.Execute(context.Background(), inv)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if value != "queued" {
		t.Fatalf("value = %q", value)
	}
	if len(queue.payloads) != 1 || queue.payloads[0].LeadID != leadID.String() {
		t.Fatalf("payloads = %+v", queue.payloads)
	}
	if queue.payloads[0].Route != "lead_capture" || queue.payloads[0].Score != 65 {
		t.Fatalf("payload = %+v", queue.payloads[0])
	}
}

func TestBookingAction(t *testing.T) {
	links := scheduling.NewLinkBuilder(&config.Config{
		CalendlyBaseURL: "https://calendly.com",
		CalendlyOwner:   "acme-realty",
	})
	action := &bookingAction{links: links}

	route := &engine.RouteConfig{
		Name:           "showing_request",
		EnableCalendly: true,
		Calendly:       &engine.CalendlySettings{DurationMinutes: 45, CalendarType: "showings"},
	}
	value, err := action.Execute(context.Background(), invocation(testSubmission(), route))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(value, "https://calendly.com/acme-realty/showings-45min") {
		t.Fatalf("value = %q", value)
	}
}

func TestBookingActionDisabledRoute(t *testing.T) {
	links := scheduling.NewLinkBuilder(&config.Config{
		CalendlyBaseURL: "https://calendly.com",
		CalendlyOwner:   "acme-realty",
	})
	action := &bookingAction{links: links}

	if _, err := action.Execute(context.Background(), invocation(testSubmission(), &engine.RouteConfig{Name: "lead_capture"})); err == nil {
		t.Fatal("expected error when route does not enable booking")
	}
}

func TestTeamActionRoundRobin(t *testing.T) {
	store := newFakeStore()
	action := &teamAction{store: store, members: []string{"ana", "ben", "cam"}}

	var got []string
	for i := 0; i < 4; i++ {
		member, err := action.Execute(context.Background(), invocation(testSubmission(), &engine.RouteConfig{}))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		got = append(got, member)
	}

	want := []string{"ben", "cam", "ana", "ben"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", got, want)
		}
	}
}

func TestTeamActionAssignsStoredLead(t *testing.T) {
	store := newFakeStore()
	action := &teamAction{store: store, members: []string{"ana"}}

	leadID := uuid.New()
	inv := invocation(testSubmission(), &engine.RouteConfig{})
	inv.Results[engine.ActionDatabase] = engine.ActionResult{
		Action: engine.ActionDatabase, Succeeded: true, Value: leadID.String(),
	}

	if _, err := action.Execute(context.Background(), inv); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if store.assigned[leadID] != "ana" {
		t.Fatalf("assigned = %v", store.assigned)
	}
}

func TestTicketAction(t *testing.T) {
	store := newFakeStore()
	action := &ticketAction{store: store}

	sub := testSubmission()
	sub.Fields["message"] = strings.Repeat("problem ", 30)

	value, err := action.Execute(context.Background(), invocation(sub, &engine.RouteConfig{Name: "support_ticket"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := uuid.Parse(value); err != nil {
		t.Fatalf("value %q is not a ticket id", value)
	}
	if len(store.tickets) != 1 {
		t.Fatalf("tickets = %d", len(store.tickets))
	}
	if len(store.tickets[0].Subject) > maxSubjectLen {
		t.Fatalf("subject not truncated: %d chars", len(store.tickets[0].Subject))
	}
}

func TestFallbackDispatch(t *testing.T) {
	fallback := NewFallback()
	fallback.RegisterExtension(func(_ context.Context, action string, _ *engine.Invocation) (string, bool, error) {
		if action == "slack_notify" {
			return "posted", true, nil
		}
		return "", false, nil
	})

	inv := invocation(testSubmission(), &engine.RouteConfig{})
	inv.Action = "slack_notify"
	value, err := fallback.Execute(context.Background(), inv)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if value != "posted" {
		t.Fatalf("value = %q", value)
	}

	inv.Action = "unknown_thing"
	if _, err := fallback.Execute(context.Background(), inv); !errors.Is(err, engine.ErrNotHandled) {
		t.Fatalf("err = %v, want ErrNotHandled", err)
	}
}

func TestRegistryCoversBuiltinActions(t *testing.T) {
	registry := Registry(Deps{Store: newFakeStore(), Sender: &fakeSender{}})

	for _, name := range []string{
		engine.ActionDatabase, engine.ActionEmailNotification, engine.ActionAgentNotification,
		engine.ActionFollowupBoss, engine.ActionCalendlyBooking, engine.ActionTeamAssignment,
		engine.ActionCreateTicket,
	} {
		if registry[name] == nil {
			t.Fatalf("no handler registered for %s", name)
		}
	}
}
