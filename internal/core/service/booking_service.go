package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/esypg/pg-marketplace/internal/api/metrics"
	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

const bookingIdempotencyScope = "booking"

type BookingService struct {
	bookings    ports.BookingRepository
	listings    ports.ListingRepository
	accounts    ports.AccountRepository
	idempotency ports.IdempotencyStore
	logger      zerolog.Logger
	now         func() time.Time
}

// NewBookingService wires the booking use cases. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewBookingService(
	bookings ports.BookingRepository,
	listings ports.ListingRepository,
	accounts ports.AccountRepository,
	idempotency ports.IdempotencyStore,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:    bookings,
		listings:    listings,
		accounts:    accounts,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

// Create books a listing for the caller, snapshotting the listing's name,
// price and first image. A repeated Idempotency-Key returns the booking the
// key produced the first time.
func (s *BookingService) Create(ctx context.Context, in ports.CreateBookingInput) (*ports.BookingResult, error) {
	if !in.Caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	listingID := strings.TrimSpace(in.ListingID)
	if listingID == "" {
		return nil, domain.NewValidationError("", "pgId")
	}

	if existing := s.replay(ctx, in); existing != nil {
		return &ports.BookingResult{Booking: existing, AlreadyExisted: true}, nil
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	booking := domain.NewBooking(in.Caller.ID, listing, s.now().UTC())
	if err := s.bookings.Create(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("pg_id", listingID).Msg("failed to create booking")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, idempotencyScope(in.Caller), in.IdempotencyKey, booking.ID); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to record idempotency key")
		}
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info().Str("booking_id", booking.ID).Str("user_id", in.Caller.ID).Str("pg_id", listingID).Msg("booking created")
	return &ports.BookingResult{Booking: booking}, nil
}

// replay returns the booking previously created under the same key, if any.
// Store failures are logged and treated as a miss.
func (s *BookingService) replay(ctx context.Context, in ports.CreateBookingInput) *domain.Booking {
	if in.IdempotencyKey == "" || s.idempotency == nil {
		return nil
	}

	id, found, err := s.idempotency.Lookup(ctx, idempotencyScope(in.Caller), in.IdempotencyKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}

	existing, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("booking_id", id).Msg("idempotent replay lookup failed")
		}
		return nil
	}

	metrics.IdempotentReplaysTotal.Inc()
	s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("booking_id", existing.ID).Msg("idempotent replay")
	return existing
}

func (s *BookingService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Booking, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.bookings.ListByUser(ctx, caller.ID)
}

// ListForBroker returns the bookings made on brokerID's listings, expanded
// with renter and listing details. Only that broker may ask. Bookings whose
// listing has been deleted are not included.
func (s *BookingService) ListForBroker(ctx context.Context, brokerID string, caller domain.Caller) ([]*domain.BrokerBooking, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.CanViewBrokerBookings(caller, brokerID) {
		return nil, fmt.Errorf("list broker bookings: %w", domain.ErrForbidden)
	}

	listings, err := s.listings.ListByBroker(ctx, brokerID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return []*domain.BrokerBooking{}, nil
	}

	byListing := make(map[string]*domain.Listing, len(listings))
	listingIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		byListing[l.ID] = l
		listingIDs = append(listingIDs, l.ID)
	}

	bookings, err := s.bookings.ListByListingIDs(ctx, listingIDs)
	if err != nil {
		return nil, err
	}

	renters, err := s.rentersOf(ctx, bookings)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.BrokerBooking, 0, len(bookings))
	for _, b := range bookings {
		l, ok := byListing[b.ListingID]
		if !ok {
			continue
		}
		view := &domain.BrokerBooking{
			Booking: *b,
			PG: domain.BookingListing{
				ID:       l.ID,
				Name:     l.Name,
				Images:   l.Images,
				BrokerID: l.BrokerID,
			},
		}
		if u, ok := renters[b.UserID]; ok {
			view.User = domain.BookingUser{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *BookingService) rentersOf(ctx context.Context, bookings []*domain.Booking) (map[string]*domain.Account, error) {
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		ids = append(ids, b.UserID)
	}
	if len(ids) == 0 {
		return map[string]*domain.Account{}, nil
	}

	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load renters: %w", err)
	}
	out := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}

// Delete cancels a booking. Only the renter who made it may do so.
func (s *BookingService) Delete(ctx context.Context, id string, caller domain.Caller) error {
	if !caller.Authenticated() {
		return domain.ErrUnauthenticated
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutateBooking(caller, booking) {
		return fmt.Errorf("delete booking: %w", domain.ErrForbidden)
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}

	metrics.BookingsDeletedTotal.Inc()
	s.logger.Info().Str("booking_id", id).Str("user_id", caller.ID).Msg("booking deleted")
	return nil
}

func idempotencyScope(caller domain.Caller) string {
	return bookingIdempotencyScope + ":" + caller.ID
}
