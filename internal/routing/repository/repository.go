// Package repository provides data access for routed leads, support
// tickets, and team assignment rotation.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"realty_leads_backend/platform/apperr"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a routed submission persisted by the database action.
type Lead struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Message    string
	Route      string
	Score      int
	ListingID  string
	Address    string
	SourceURL  string
	IPAddress  string
	UserAgent  string
	FormID     string
	UTM        map[string]string
	AssignedTo string
	CRMID      string
	CreatedAt  time.Time
}

// Ticket is a support request captured by the create_ticket action.
type Ticket struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
}

// Repository provides data access for the routing module.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a routing repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateLead stores a routed lead and returns its id.
func (r *Repository) CreateLead(ctx context.Context, lead Lead) (uuid.UUID, error) {
	utm, err := json.Marshal(lead.UTM)
	if err != nil {
		return uuid.UUID{}, apperr.Wrap(apperr.KindInternal, "marshal utm", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, message, route, score,
			listing_id, address, source_url, ip_address, user_agent, form_id, utm
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Message,
		lead.Route, lead.Score, nullable(lead.ListingID), nullable(lead.Address),
		nullable(lead.SourceURL), nullable(lead.IPAddress), nullable(lead.UserAgent),
		nullable(lead.FormID), utm,
	).Scan(&id)
	if err != nil {
		return uuid.UUID{}, apperr.Wrap(apperr.KindInternal, "create lead", err)
	}
	return id, nil
}

// GetLead returns a stored lead by id.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	var utm []byte
	var listingID, address, sourceURL, ipAddress, userAgent, formID, assignedTo, crmID *string
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, message, route, score,
		       listing_id, address, source_url, ip_address, user_agent, form_id,
		       utm, assigned_to, crm_id, created_at
		FROM leads WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.Message, &lead.Route, &lead.Score, &listingID, &address,
		&sourceURL, &ipAddress, &userAgent, &formID, &utm, &assignedTo, &crmID,
		&lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, apperr.Wrap(apperr.KindInternal, "get lead", err)
	}

	lead.ListingID = deref(listingID)
	lead.Address = deref(address)
	lead.SourceURL = deref(sourceURL)
	lead.IPAddress = deref(ipAddress)
	lead.UserAgent = deref(userAgent)
	lead.FormID = deref(formID)
	lead.AssignedTo = deref(assignedTo)
	lead.CRMID = deref(crmID)
	if len(utm) > 0 {
		_ = json.Unmarshal(utm, &lead.UTM)
	}
	return lead, nil
}

// ListRecentLeads returns the newest leads, capped at limit.
func (r *Repository) ListRecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, route, score, assigned_to, crm_id, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list leads", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		var assignedTo, crmID *string
		if err := rows.Scan(
			&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email,
			&lead.Route, &lead.Score, &assignedTo, &crmID, &lead.CreatedAt,
		); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan lead", err)
		}
		lead.AssignedTo = deref(assignedTo)
		lead.CRMID = deref(crmID)
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// AssignLead records the team member a lead was routed to.
func (r *Repository) AssignLead(ctx context.Context, leadID uuid.UUID, member string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = $2, updated_at = now() WHERE id = $1
	`, leadID, member)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "assign lead", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// MarkCRMSynced records the remote CRM id on a stored lead.
func (r *Repository) MarkCRMSynced(ctx context.Context, leadID, remoteID string) error {
	id, err := uuid.Parse(leadID)
	if err != nil {
		return apperr.BadRequest("invalid lead id")
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE leads SET crm_id = $2, updated_at = now() WHERE id = $1
	`, id, remoteID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "mark crm synced", err)
	}
	return nil
}

// CreateTicket stores a support ticket and returns its id.
func (r *Repository) CreateTicket(ctx context.Context, ticket Ticket) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tickets (email, name, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ticket.Email, ticket.Name, ticket.Subject, ticket.Message).Scan(&id)
	if err != nil {
		return uuid.UUID{}, apperr.Wrap(apperr.KindInternal, "create ticket", err)
	}
	return id, nil
}

// NextRotationPosition advances the round-robin cursor used for team
// assignment. The single-row update makes the rotation safe under
// concurrent submissions.
func (r *Repository) NextRotationPosition(ctx context.Context) (int64, error) {
	var position int64
	err := r.pool.QueryRow(ctx, `
		UPDATE team_rotation SET position = position + 1, updated_at = now()
		WHERE id = 1
		RETURNING position
	`).Scan(&position)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "advance rotation", err)
	}
	return position, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
