// Package routing is the lead routing bounded context: it turns raw form
// submissions into classified, scored, and acted-upon leads.
package routing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domainevents "realty_leads_backend/internal/events"
	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/platform/apperr"
	"realty_leads_backend/platform/events"
	"realty_leads_backend/platform/logger"
)

const defaultSuccessMessage = "Thank you! Your submission has been received."

// RouteResult is the envelope returned to the submitting client.
type RouteResult struct {
	SubmissionID   string                `json:"submissionId"`
	Route          string                `json:"route"`
	Score          int                   `json:"score"`
	SuccessMessage string                `json:"successMessage"`
	ActionResults  []engine.ActionResult `json:"actionResults"`
}

// Service orchestrates the routing engine: extraction, classification,
// conditional rules, scoring, and the action pipeline.
type Service struct {
	mu         sync.RWMutex
	mapping    *engine.MappingTable
	classifier *engine.Classifier
	registry   *engine.Registry
	evaluator  *engine.Evaluator
	scorer     *engine.Scorer
	pipeline   *engine.Pipeline
	bus        events.Bus
	log        *logger.Logger
}

// NewService wires the engine components into a service.
func NewService(
	mapping *engine.MappingTable,
	classifier *engine.Classifier,
	registry *engine.Registry,
	evaluator *engine.Evaluator,
	scorer *engine.Scorer,
	pipeline *engine.Pipeline,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		mapping:    mapping,
		classifier: classifier,
		registry:   registry,
		evaluator:  evaluator,
		scorer:     scorer,
		pipeline:   pipeline,
		bus:        bus,
		log:        log,
	}
}

// Process routes one raw form submission end to end.
//
// Validation failures reject the submission before any pipeline action
// runs. Action failures never do: every action executes and its outcome
// is reported in the envelope.
func (s *Service) Process(ctx context.Context, raw map[string]string, meta engine.Metadata) (*RouteResult, error) {
	submissionID := uuid.New().String()
	ctx = context.WithValue(ctx, logger.SubmissionIDKey, submissionID)
	log := s.log.WithContext(ctx)

	sub := s.mappingTable().Extract(raw, meta)

	if !sub.Has("email") {
		return nil, apperr.Validation("a valid email address is required")
	}
	if !sub.Has("first_name") {
		return nil, apperr.Validation("a name is required")
	}

	routeName := s.classifier.Classify(sub)
	route, err := s.registry.Resolve(routeName)
	if err != nil {
		// Only an explicit route_type override can name a route the
		// registry does not know; inferred routes are always built in.
		return nil, apperr.Validation("unknown route: " + routeName)
	}

	engine.ApplyRules(route, func(rule engine.ConditionalRule) bool {
		return s.evaluator.Evaluate(ctx, sub, rule)
	})

	sub.LeadScore = s.scorer.Score(sub)

	results := s.pipeline.Run(ctx, sub, route)

	log.RouteDecision(route.Name, sub.LeadScore, meta.FormID, meta.SourceURL)
	s.publishLeadRouted(ctx, submissionID, sub, route, results)
	s.publishTicketCreated(ctx, sub, results)

	message := route.SuccessMessage
	if message == "" {
		message = defaultSuccessMessage
	}

	return &RouteResult{
		SubmissionID:   submissionID,
		Route:          route.Name,
		Score:          sub.LeadScore,
		SuccessMessage: message,
		ActionResults:  results,
	}, nil
}

// Registry exposes the route registry for admin handlers.
func (s *Service) Registry() *engine.Registry {
	return s.registry
}

// ReloadMapping replaces the mapping table from a YAML file. Requests in
// flight keep the table they started with.
func (s *Service) ReloadMapping(path string) error {
	mapping, err := engine.LoadMappingTable(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.mapping = mapping
	s.mu.Unlock()
	return nil
}

func (s *Service) mappingTable() *engine.MappingTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping
}

func (s *Service) publishLeadRouted(ctx context.Context, submissionID string, sub *engine.Submission, route *engine.RouteConfig, results []engine.ActionResult) {
	if s.bus == nil {
		return
	}

	event := domainevents.LeadRouted{
		BaseEvent:    events.NewBaseEvent(),
		SubmissionID: submissionID,
		Route:        route.Name,
		Score:        sub.LeadScore,
		FirstName:    sub.Field("first_name"),
		LastName:     sub.Field("last_name"),
		Email:        sub.Field("email"),
		Phone:        sub.Field("phone"),
		Message:      sub.Field("message"),
		ListingID:    sub.ListingRef(),
		Address:      sub.Field("address"),
		SourceURL:    sub.Metadata.SourceURL,
		UTM:          sub.Metadata.UTM,
	}
	for _, result := range results {
		if result.Action == engine.ActionDatabase && result.Succeeded && result.Value != "skipped" {
			event.LeadID = result.Value
			break
		}
	}
	s.bus.Publish(ctx, event)
}

func (s *Service) publishTicketCreated(ctx context.Context, sub *engine.Submission, results []engine.ActionResult) {
	if s.bus == nil {
		return
	}
	for _, result := range results {
		if result.Action != engine.ActionCreateTicket || !result.Succeeded {
			continue
		}
		s.bus.Publish(ctx, domainevents.TicketCreated{
			BaseEvent: events.NewBaseEvent(),
			TicketID:  result.Value,
			Email:     sub.Field("email"),
			Subject:   sub.Field("message"),
		})
	}
}
