package engine

import (
	"context"
	"fmt"
	"strconv"

	"realty_leads_backend/platform/logger"
)

// Built-in action names.
const (
	ActionDatabase          = "database"
	ActionEmailNotification = "email_notification"
	ActionAgentNotification = "agent_notification"
	ActionFollowupBoss      = "followup_boss"
	ActionCalendlyBooking   = "calendly_booking"
	ActionTeamAssignment    = "team_assignment"
	ActionCreateTicket      = "create_ticket"
)

// ErrNotHandled is the sentinel a fallback handler returns when no
// extension claims the action. The pipeline records it as a success with
// an explanatory value rather than a failure.
var ErrNotHandled = fmt.Errorf("action not handled")

// Invocation is the unit of work handed to an action handler. Handlers
// may read results of earlier actions in the same pipeline run (the email
// action reads the booking link, team assignment reads the stored lead
// id) but must tolerate their absence.
type Invocation struct {
	Submission *Submission
	Route      *RouteConfig
	// Action is the name of the action currently executing. Fallback
	// handlers use it to dispatch on names they were not registered for.
	Action  string
	Results map[string]ActionResult
}

// Result returns the outcome of an earlier action in this run, if any.
func (inv *Invocation) Result(action string) (ActionResult, bool) {
	r, ok := inv.Results[action]
	return r, ok
}

// Handler executes one action. The returned value is a short,
// human-readable outcome ("lead 4821", a booking URL); errors are
// captured per action and never abort the pipeline.
type Handler interface {
	Execute(ctx context.Context, inv *Invocation) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, inv *Invocation) (string, error)

func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) (string, error) {
	return f(ctx, inv)
}

// Pipeline runs a route's actions sequentially with per-action failure
// isolation: one failing action is recorded and the rest still run.
type Pipeline struct {
	handlers map[string]Handler
	fallback Handler
	log      *logger.Logger
}

// NewPipeline builds a pipeline over the registered handlers. The
// fallback handles any action name with no registered handler; a nil
// fallback means unknown actions fail.
func NewPipeline(handlers map[string]Handler, fallback Handler, log *logger.Logger) *Pipeline {
	copied := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		copied[name] = h
	}
	return &Pipeline{handlers: copied, fallback: fallback, log: log}
}

// Register adds or replaces the handler for an action name.
func (p *Pipeline) Register(name string, h Handler) {
	p.handlers[name] = h
}

// Run executes the route's actions in declared order and returns one
// result per action. Panicking handlers are recovered into a failed
// result. When the same action appears more than once, later results are
// keyed action_2, action_3 and so on.
func (p *Pipeline) Run(ctx context.Context, sub *Submission, route *RouteConfig) []ActionResult {
	inv := &Invocation{
		Submission: sub,
		Route:      route,
		Results:    make(map[string]ActionResult, len(route.Actions)),
	}

	results := make([]ActionResult, 0, len(route.Actions))
	seen := make(map[string]int, len(route.Actions))

	for _, action := range route.Actions {
		inv.Action = action
		result := p.execute(ctx, action, inv)

		seen[action]++
		key := action
		if n := seen[action]; n > 1 {
			key = action + "_" + strconv.Itoa(n)
		}
		inv.Results[key] = result
		results = append(results, result)
	}
	return results
}

func (p *Pipeline) execute(ctx context.Context, action string, inv *Invocation) (result ActionResult) {
	result = ActionResult{Action: action}

	defer func() {
		if r := recover(); r != nil {
			result.Succeeded = false
			result.Error = fmt.Sprintf("panic: %v", r)
			p.log.ActionError(action, fmt.Errorf("recovered panic: %v", r))
		}
	}()

	handler, registered := p.handlers[action]
	if !registered {
		if p.fallback == nil {
			result.Error = "no handler registered"
			p.log.ActionError(action, fmt.Errorf("no handler registered"))
			return result
		}
		handler = p.fallback
	}

	value, err := handler.Execute(ctx, inv)
	if err == ErrNotHandled {
		// An unclaimed extension point is not a failure of the lead.
		result.Succeeded = true
		result.Value = "not handled"
		return result
	}
	if err != nil {
		result.Error = err.Error()
		p.log.ActionError(action, err)
		return result
	}

	result.Succeeded = true
	result.Value = value
	return result
}
