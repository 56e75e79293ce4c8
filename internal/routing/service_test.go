package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/platform/apperr"
	"realty_leads_backend/platform/logger"
)

type recordingHandler struct {
	calls int
	value string
	err   error
}

func (h *recordingHandler) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	h.calls++
	return h.value, h.err
}

func newTestService(t *testing.T, handlers map[string]engine.Handler) *Service {
	t.Helper()
	log := logger.New("test")
	scorer := engine.NewScorer(9, 17)
	scorer.Now = func() time.Time {
		return time.Date(2026, time.March, 3, 22, 0, 0, 0, time.UTC)
	}
	return NewService(
		engine.DefaultMappingTable(),
		engine.NewClassifier(engine.DefaultFormRoutes()),
		engine.NewRegistry(),
		engine.NewEvaluator(nil, 9, 17),
		scorer,
		engine.NewPipeline(handlers, nil, log),
		nil,
		log,
	)
}

func noopHandlers(actions ...string) map[string]engine.Handler {
	handlers := make(map[string]engine.Handler, len(actions))
	for _, action := range actions {
		handlers[action] = engine.HandlerFunc(func(ctx context.Context, inv *engine.Invocation) (string, error) {
			return "ok", nil
		})
	}
	return handlers
}

func TestProcessFullFlow(t *testing.T) {
	db := &recordingHandler{value: "a2c5f1de-9c7e-4b7e-8d3a-1f2e3d4c5b6a"}
	mail := &recordingHandler{value: "sent"}
	crm := &recordingHandler{value: "queued"}
	svc := newTestService(t, map[string]engine.Handler{
		engine.ActionDatabase:          db,
		engine.ActionEmailNotification: mail,
		engine.ActionFollowupBoss:      crm,
	})

	result, err := svc.Process(context.Background(), map[string]string{
		"your-name":  "maria cruz",
		"your-email": "maria@example.com",
		"your-phone": "+1 555 0100",
	}, engine.Metadata{FormID: "wpcf7-f12"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Route != engine.RouteLeadCapture {
		t.Errorf("Route = %q, want %q", result.Route, engine.RouteLeadCapture)
	}
	if result.SubmissionID == "" {
		t.Error("SubmissionID is empty")
	}
	if result.SuccessMessage == "" {
		t.Error("SuccessMessage is empty")
	}
	if db.calls != 1 || mail.calls != 1 || crm.calls != 1 {
		t.Errorf("handler calls = %d/%d/%d, want 1 each", db.calls, mail.calls, crm.calls)
	}
	if len(result.ActionResults) != 3 {
		t.Fatalf("len(ActionResults) = %d, want 3", len(result.ActionResults))
	}
	for _, ar := range result.ActionResults {
		if !ar.Succeeded {
			t.Errorf("action %s failed: %s", ar.Action, ar.Error)
		}
	}
	if result.Score != 20 {
		t.Errorf("Score = %d, want 20 for phone-only signal", result.Score)
	}
}

func TestProcessRejectsBeforePipeline(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{"missing email", map[string]string{"your-name": "Maria Cruz"}},
		{"missing name", map[string]string{"your-email": "maria@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingHandler{value: "stored"}
			svc := newTestService(t, map[string]engine.Handler{engine.ActionDatabase: db})

			_, err := svc.Process(context.Background(), tt.raw, engine.Metadata{})
			if err == nil {
				t.Fatal("Process() expected error")
			}
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("kind = %v, want KindValidation", apperr.GetKind(err))
			}
			if db.calls != 0 {
				t.Errorf("database action ran %d times on rejected submission", db.calls)
			}
		})
	}
}

func TestProcessUnknownExplicitRoute(t *testing.T) {
	svc := newTestService(t, noopHandlers(engine.ActionDatabase))

	_, err := svc.Process(context.Background(), map[string]string{
		"your-name":  "Maria Cruz",
		"your-email": "maria@example.com",
		"route_type": "vip_concierge",
	}, engine.Metadata{RouteType: "vip_concierge"})
	if err == nil {
		t.Fatal("Process() expected error for unknown route override")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
}

func TestProcessActionFailureStillSucceeds(t *testing.T) {
	svc := newTestService(t, map[string]engine.Handler{
		engine.ActionDatabase:          &recordingHandler{err: errors.New("connection refused")},
		engine.ActionEmailNotification: &recordingHandler{value: "sent"},
		engine.ActionFollowupBoss:      &recordingHandler{value: "queued"},
	})

	result, err := svc.Process(context.Background(), map[string]string{
		"your-name":  "Maria Cruz",
		"your-email": "maria@example.com",
	}, engine.Metadata{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var failed, succeeded int
	for _, ar := range result.ActionResults {
		if ar.Succeeded {
			succeeded++
		} else {
			failed++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("failed/succeeded = %d/%d, want 1/2", failed, succeeded)
	}
}

func TestProcessAppliesConditionalRules(t *testing.T) {
	svc := newTestService(t, noopHandlers(
		engine.ActionDatabase,
		engine.ActionEmailNotification,
		engine.ActionAgentNotification,
		engine.ActionFollowupBoss,
		engine.ActionTeamAssignment,
	))
	svc.evaluator = engine.NewEvaluator(staticPrices{price: 2500000}, 9, 17)

	result, err := svc.Process(context.Background(), map[string]string{
		"your-name":  "Maria Cruz",
		"your-email": "maria@example.com",
		"listing_id": "MLS-88",
	}, engine.Metadata{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Route != engine.RoutePropertyInquiry {
		t.Fatalf("Route = %q, want %q", result.Route, engine.RoutePropertyInquiry)
	}
	var assigned bool
	for _, ar := range result.ActionResults {
		if ar.Action == engine.ActionTeamAssignment {
			assigned = true
		}
	}
	if !assigned {
		t.Error("high-value listing did not add the team assignment action")
	}
}

func TestProcessRuleMutationDoesNotStickToRegistry(t *testing.T) {
	svc := newTestService(t, noopHandlers(
		engine.ActionDatabase,
		engine.ActionEmailNotification,
		engine.ActionAgentNotification,
		engine.ActionFollowupBoss,
		engine.ActionTeamAssignment,
	))
	svc.evaluator = engine.NewEvaluator(staticPrices{price: 2500000}, 9, 17)

	raw := map[string]string{
		"your-name":  "Maria Cruz",
		"your-email": "maria@example.com",
		"listing_id": "MLS-88",
	}
	if _, err := svc.Process(context.Background(), raw, engine.Metadata{}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	route, err := svc.Registry().Resolve(engine.RoutePropertyInquiry)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for _, action := range route.Actions {
		if action == engine.ActionTeamAssignment {
			t.Fatal("registry route was mutated by a per-submission rule")
		}
	}
}

type staticPrices struct {
	price float64
}

func (s staticPrices) GetListingPrice(ctx context.Context, listingID string) (float64, error) {
	return s.price, nil
}
