package ports

import (
	"context"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// CreateBookingInput carries a booking request.
type CreateBookingInput struct {
	Caller         domain.Caller
	ListingID      string
	IdempotencyKey string
}

// BookingResult is returned by Create.
type BookingResult struct {
	Booking *domain.Booking
	// AlreadyExisted is true when the Idempotency-Key matched an earlier booking.
	AlreadyExisted bool
}

// BookingService defines the booking lifecycle use cases.
type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*BookingResult, error)
	ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Booking, error)
	ListForBroker(ctx context.Context, brokerID string, caller domain.Caller) ([]*domain.BrokerBooking, error)
	Delete(ctx context.Context, id string, caller domain.Caller) error
}
