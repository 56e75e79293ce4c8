// Package events defines the domain events published by the routing
// service. Subscribers (CRM sync, logging) attach at composition time.
package events

import "realty_leads_backend/platform/events"

// Event names.
const (
	LeadRoutedName    = "lead.routed"
	TicketCreatedName = "ticket.created"
)

// LeadRouted is published after a submission has been routed and its
// pipeline has run, regardless of individual action failures.
type LeadRouted struct {
	events.BaseEvent
	SubmissionID string            `json:"submission_id"`
	LeadID       string            `json:"lead_id,omitempty"`
	Route        string            `json:"route"`
	Score        int               `json:"score"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name,omitempty"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Message      string            `json:"message,omitempty"`
	ListingID    string            `json:"listing_id,omitempty"`
	Address      string            `json:"address,omitempty"`
	SourceURL    string            `json:"source_url,omitempty"`
	UTM          map[string]string `json:"utm,omitempty"`
}

func (LeadRouted) EventName() string { return LeadRoutedName }

// TicketCreated is published when a support submission produced a ticket.
type TicketCreated struct {
	events.BaseEvent
	TicketID string `json:"ticket_id"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
}

func (TicketCreated) EventName() string { return TicketCreatedName }
