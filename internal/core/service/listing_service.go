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

const defaultMaxImageBytes = 5 << 20

type ListingService struct {
	listings      ports.ListingRepository
	accounts      ports.AccountRepository
	images        ports.ImageStore
	maxImageBytes int64
	logger        zerolog.Logger
	now           func() time.Time
}

func NewListingService(
	listings ports.ListingRepository,
	accounts ports.AccountRepository,
	images ports.ImageStore,
	maxImageBytes int64,
	logger zerolog.Logger,
) *ListingService {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}
	return &ListingService{
		listings:      listings,
		accounts:      accounts,
		images:        images,
		maxImageBytes: maxImageBytes,
		logger:        logger,
		now:           time.Now,
	}
}

// Create publishes a new listing owned by the calling broker. Nothing is
// stored, images included, unless the caller is a broker and the input is
// valid.
func (s *ListingService) Create(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	if !domain.CanCreateListing(in.Caller) {
		return nil, fmt.Errorf("create listing: %w", domain.ErrForbidden)
	}

	listing, err := s.buildListing(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkUploads(in.Images); err != nil {
		return nil, err
	}

	owner, err := s.accounts.FindByID(ctx, in.Caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("create listing: owner account missing: %w", domain.ErrForbidden)
		}
		return nil, fmt.Errorf("create listing: load owner: %w", err)
	}
	if owner.Role != domain.RoleBroker {
		return nil, fmt.Errorf("create listing: %w", domain.ErrForbidden)
	}

	refs, err := s.storeImages(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	listing.Images = refs
	listing.BrokerID = owner.ID
	listing.BrokerEmail = owner.Email
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if err := s.listings.Create(ctx, listing); err != nil {
		s.logger.Error().Err(err).Str("broker_id", owner.ID).Msg("failed to create listing")
		s.discardImages(ctx, refs)
		return nil, fmt.Errorf("create listing: %w", err)
	}

	metrics.ListingsCreatedTotal.Inc()
	s.logger.Info().Str("listing_id", listing.ID).Str("broker_id", owner.ID).Int("images", len(refs)).Msg("listing created")
	return listing, nil
}

func (s *ListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return s.listings.List(ctx)
}

func (s *ListingService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Listing, error) {
	if !domain.CanCreateListing(caller) {
		return nil, fmt.Errorf("list own listings: %w", domain.ErrForbidden)
	}
	return s.listings.ListByBroker(ctx, caller.ID)
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.listings.FindByID(ctx, id)
}

// Update applies a partial update on behalf of the listing's owner. Owner
// fields carried by the patch are dropped before anything is written.
func (s *ListingService) Update(ctx context.Context, id string, patch domain.ListingPatch, caller domain.Caller) (*domain.Listing, error) {
	current, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutateListing(caller, current) {
		return nil, fmt.Errorf("update listing: %w", domain.ErrForbidden)
	}

	patch = patch.WithoutOwnership()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Amenities != nil {
		cleaned := domain.CleanAmenities(*patch.Amenities)
		patch.Amenities = &cleaned
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.listings.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("listing_id", id).Str("broker_id", caller.ID).Msg("listing updated")
	return updated, nil
}

// Delete removes the listing. Bookings that reference it keep their snapshot.
func (s *ListingService) Delete(ctx context.Context, id string, caller domain.Caller) error {
	current, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanMutateListing(caller, current) {
		return fmt.Errorf("delete listing: %w", domain.ErrForbidden)
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ListingsDeletedTotal.Inc()
	s.logger.Info().Str("listing_id", id).Str("broker_id", caller.ID).Msg("listing deleted")
	return nil
}

func (s *ListingService) buildListing(in ports.CreateListingInput) (*domain.Listing, error) {
	l := &domain.Listing{
		Name:        strings.TrimSpace(in.Name),
		Location:    strings.TrimSpace(in.Location),
		City:        strings.TrimSpace(in.City),
		Contact:     strings.TrimSpace(in.Contact),
		Description: strings.TrimSpace(in.Description),
		Seats:       1,
	}

	var missing []string
	if l.Name == "" {
		missing = append(missing, "name")
	}
	if in.Rent == nil {
		missing = append(missing, "rent")
	}
	if l.Location == "" {
		missing = append(missing, "location")
	}
	if l.City == "" {
		missing = append(missing, "city")
	}
	if l.Contact == "" {
		missing = append(missing, "contact")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields", missing...)
	}

	l.Rent = *in.Rent
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Seats != nil {
		l.Seats = *in.Seats
	}
	if in.AC != nil {
		l.AC = *in.AC
	}

	numbers := domain.ListingPatch{Rent: &l.Rent, Price: &l.Price, Seats: &l.Seats}
	if err := numbers.Validate(); err != nil {
		return nil, err
	}

	amenities, err := domain.ParseAmenities(in.Amenities)
	if err != nil {
		return nil, err
	}
	l.Amenities = amenities
	return l, nil
}

func (s *ListingService) checkUploads(uploads []ports.ImageUpload) error {
	if len(uploads) > domain.MaxListingImages {
		return domain.NewValidationError(fmt.Sprintf("at most %d images are allowed", domain.MaxListingImages), "images")
	}
	for _, u := range uploads {
		if u.Size > s.maxImageBytes {
			return domain.NewValidationError(fmt.Sprintf("%s exceeds %d bytes", u.Filename, s.maxImageBytes), "images")
		}
	}
	return nil
}

func (s *ListingService) storeImages(ctx context.Context, uploads []ports.ImageUpload) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	if len(uploads) == 0 {
		return refs, nil
	}
	if s.images == nil {
		return nil, errors.New("store images: no image store configured")
	}

	for _, u := range uploads {
		ref, err := s.storeImage(ctx, u)
		if err != nil {
			s.discardImages(ctx, refs)
			return nil, fmt.Errorf("store image %q: %w", u.Filename, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discardImages removes images saved for a listing that never made it to
// the database. Failures are only logged.
func (s *ListingService) discardImages(ctx context.Context, refs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.images.Delete(ctx, domain.ImageName(ref)); err != nil {
			s.logger.Warn().Err(err).Str("image", ref).Msg("failed to discard orphaned image")
		}
	}
}

func (s *ListingService) storeImage(ctx context.Context, u ports.ImageUpload) (string, error) {
	f, err := u.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ref, err := s.images.Save(ctx, u.Filename, u.ContentType, f)
	if err != nil {
		return "", err
	}
	metrics.ImagesStoredTotal.WithLabelValues(s.images.Backend()).Inc()
	return ref, nil
}
