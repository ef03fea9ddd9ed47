package ports

import (
	"context"
	"time"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// ListingRepository persists PG listings.
type ListingRepository interface {
	// Create inserts the listing and sets its ID.
	Create(ctx context.Context, l *domain.Listing) error
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	// List returns every listing in store order.
	List(ctx context.Context) ([]*domain.Listing, error)
	ListByBroker(ctx context.Context, brokerID string) ([]*domain.Listing, error)
	// Update applies the patch and returns the stored result. Owner fields in
	// the patch are never written.
	Update(ctx context.Context, id string, patch domain.ListingPatch, now time.Time) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
}
