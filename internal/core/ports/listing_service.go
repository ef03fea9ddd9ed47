package ports

import (
	"context"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// CreateListingInput carries a new listing as submitted by a broker.
// Optional numeric fields are nil when the client left them out; Amenities is
// the serialized JSON array sent by the form.
type CreateListingInput struct {
	Caller      domain.Caller
	Name        string
	Rent        *float64
	Price       *float64
	Location    string
	City        string
	Seats       *int
	AC          *bool
	Contact     string
	Description string
	Amenities   string
	Images      []ImageUpload
}

// ListingService defines the listing lifecycle use cases.
type ListingService interface {
	Create(ctx context.Context, in CreateListingInput) (*domain.Listing, error)
	ListAll(ctx context.Context) ([]*domain.Listing, error)
	ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Update(ctx context.Context, id string, patch domain.ListingPatch, caller domain.Caller) (*domain.Listing, error)
	Delete(ctx context.Context, id string, caller domain.Caller) error
}
