// Package crm synchronizes routed leads to FollowUp Boss.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"realty_leads_backend/platform/config"
	"realty_leads_backend/platform/logger"
)

const (
	eventsPath         = "/v1/events"
	defaultHTTPTimeout = 15 * time.Second
)

// Lead is the subset of a routed submission the CRM cares about.
type Lead struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Message   string            `json:"message,omitempty"`
	Route     string            `json:"route"`
	Score     int               `json:"score"`
	ListingID string            `json:"listing_id,omitempty"`
	Address   string            `json:"address,omitempty"`
	SourceURL string            `json:"source_url,omitempty"`
	UTM       map[string]string `json:"utm,omitempty"`
}

// Client pushes lead events to the FollowUp Boss events API.
type Client struct {
	baseURL    string
	apiKey     string
	system     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a FollowUp Boss client from config.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetFollowUpBossBaseURL(), "/"),
		apiKey:     cfg.GetFollowUpBossAPIKey(),
		system:     cfg.GetFollowUpBossSystem(),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        log,
	}
}

type fubPerson struct {
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Emails    []fubValue `json:"emails,omitempty"`
	Phones    []fubValue `json:"phones,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

type fubValue struct {
	Value string `json:"value"`
}

type fubProperty struct {
	MLSNumber string `json:"mlsNumber,omitempty"`
	Street    string `json:"street,omitempty"`
}

type fubEvent struct {
	Source    string       `json:"source"`
	System    string       `json:"system"`
	Type      string       `json:"type"`
	Message   string       `json:"message,omitempty"`
	Person    fubPerson    `json:"person"`
	Property  *fubProperty `json:"property,omitempty"`
	PageURL   string       `json:"pageUrl,omitempty"`
	Campaign  string       `json:"campaign,omitempty"`
	LeadScore int          `json:"leadScore,omitempty"`
}

// eventTypes maps route names onto FollowUp Boss event types. The API
// rejects unknown types, so unmapped routes fall back to the generic
// inquiry.
var eventTypes = map[string]string{
	"lead_capture":     "General Inquiry",
	"property_inquiry": "Property Inquiry",
	"home_valuation":   "Seller Inquiry",
	"showing_request":  "Property Inquiry",
}

// PushLead creates a lead event in FollowUp Boss. The returned id is the
// remote event id.
func (c *Client) PushLead(ctx context.Context, lead Lead) (string, error) {
	eventType, ok := eventTypes[lead.Route]
	if !ok {
		eventType = "General Inquiry"
	}

	event := fubEvent{
		Source:    "website",
		System:    c.system,
		Type:      eventType,
		Message:   lead.Message,
		PageURL:   lead.SourceURL,
		Campaign:  lead.UTM["utm_campaign"],
		LeadScore: lead.Score,
		Person: fubPerson{
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Tags:      []string{lead.Route},
		},
	}
	if lead.Email != "" {
		event.Person.Emails = []fubValue{{Value: lead.Email}}
	}
	if lead.Phone != "" {
		event.Person.Phones = []fubValue{{Value: lead.Phone}}
	}
	if lead.ListingID != "" || lead.Address != "" {
		event.Property = &fubProperty{MLSNumber: lead.ListingID, Street: lead.Address}
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal fub event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+eventsPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	// FollowUp Boss authenticates with the API key as the basic-auth user.
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("fub request failed", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("fub request error", "status", resp.StatusCode, "body", string(snippet))
		return "", fmt.Errorf("fub status %d", resp.StatusCode)
	}

	var payload struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("fub decode failed", "error", err)
		return "", err
	}
	return payload.ID.String(), nil
}
