package ports

import (
	"context"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// BookingRepository persists bookings.
type BookingRepository interface {
	// Create inserts the booking and sets its ID.
	Create(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// ListByUser returns the user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	// ListByListingIDs returns bookings referencing any of the listings,
	// newest first.
	ListByListingIDs(ctx context.Context, listingIDs []string) ([]*domain.Booking, error)
	Delete(ctx context.Context, id string) error
}
