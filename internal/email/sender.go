// Package email renders and delivers transactional mail for lead
// routing: the confirmation the lead receives and the internal agent
// notification.
package email

import "context"

// Attachment is an inline file attached to an outgoing message.
type Attachment struct {
	FileName string
	Content  []byte
}

// LeadEmailData is the template payload for lead-facing confirmations.
type LeadEmailData struct {
	FirstName  string
	Message    string
	Address    string
	ListingID  string
	BookingURL string
}

// AgentEmailData is the template payload for internal agent alerts.
type AgentEmailData struct {
	LeadName  string
	LeadEmail string
	LeadPhone string
	Route     string
	Score     int
	Message   string
	ListingID string
	SourceURL string
}

// Sender delivers rendered emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	// SendLeadConfirmation sends the route's confirmation template to the
	// lead. The template name comes from the route config.
	SendLeadConfirmation(ctx context.Context, toEmail, template string, data LeadEmailData, attachments ...Attachment) error

	// SendAgentNotification alerts the internal inbox about a new lead.
	SendAgentNotification(ctx context.Context, toEmail string, data AgentEmailData) error
}

// NoopSender satisfies Sender without delivering anything. Used when
// email is disabled in config.
type NoopSender struct{}

func (NoopSender) SendLeadConfirmation(context.Context, string, string, LeadEmailData, ...Attachment) error {
	return nil
}

func (NoopSender) SendAgentNotification(context.Context, string, AgentEmailData) error {
	return nil
}
