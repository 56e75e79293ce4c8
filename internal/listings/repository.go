// Package listings resolves listing data for condition evaluation. Price
// lookups hit Postgres behind a Redis cache so high-value routing rules
// do not add a query per submission.
package listings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"realty_leads_backend/platform/apperr"
)

// Store is the persistent source of listing prices.
type Store interface {
	GetListingPrice(ctx context.Context, listingID string) (float64, error)
}

// Repository reads listings from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a listings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetListingPrice returns the asking price of a listing.
func (r *Repository) GetListingPrice(ctx context.Context, listingID string) (float64, error) {
	var price float64
	err := r.pool.QueryRow(ctx,
		`SELECT price FROM listings WHERE id = $1`,
		listingID,
	).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("listing not found")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "get listing price", err)
	}
	return price, nil
}
