package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stores mirroring the Mongo repositories.
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	byID    map[string]*domain.Account
	seq     int
	findErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	c := cloneAccount(a)
	c.ID = fmt.Sprintf("acc-%d", r.seq)
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmailAndRole(_ context.Context, email, role string) (*domain.Account, error) {
	for _, a := range r.byID {
		if a.Email == email && a.Role == role {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

type stubListingRepo struct {
	byID      map[string]*domain.Listing
	order     []string
	seq       int
	createErr error
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{byID: make(map[string]*domain.Listing)}
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Amenities = append([]string(nil), l.Amenities...)
	c.Images = append([]string(nil), l.Images...)
	return &c
}

func (r *stubListingRepo) Create(_ context.Context, l *domain.Listing) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	l.ID = fmt.Sprintf("pg-%d", r.seq)
	r.byID[l.ID] = cloneListing(l)
	r.order = append(r.order, l.ID)
	return nil
}

func (r *stubListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *stubListingRepo) List(_ context.Context) ([]*domain.Listing, error) {
	out := []*domain.Listing{}
	for _, id := range r.order {
		if l, ok := r.byID[id]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *stubListingRepo) ListByBroker(ctx context.Context, brokerID string) ([]*domain.Listing, error) {
	all, _ := r.List(ctx)
	out := []*domain.Listing{}
	for _, l := range all {
		if l.BrokerID == brokerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Update mirrors the Mongo $set: owner fields in the patch are never written.
func (r *stubListingRepo) Update(_ context.Context, id string, p domain.ListingPatch, now time.Time) (*domain.Listing, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Rent != nil {
		l.Rent = *p.Rent
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.City != nil {
		l.City = *p.City
	}
	if p.Seats != nil {
		l.Seats = *p.Seats
	}
	if p.AC != nil {
		l.AC = *p.AC
	}
	if p.Contact != nil {
		l.Contact = *p.Contact
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Amenities != nil {
		l.Amenities = append([]string(nil), (*p.Amenities)...)
	}
	if p.Images != nil {
		l.Images = append([]string(nil), (*p.Images)...)
	}
	l.UpdatedAt = now
	return cloneListing(l), nil
}

func (r *stubListingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubBookingRepo struct {
	byID          map[string]*domain.Booking
	seq           int
	listedListing []string // listing ids passed to the last ListByListingIDs call
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[string]*domain.Booking)}
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	return &c
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.seq++
	b.ID = fmt.Sprintf("bk-%d", r.seq)
	r.byID[b.ID] = cloneBooking(b)
	return nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *stubBookingRepo) newestFirst(keep func(*domain.Booking) bool) []*domain.Booking {
	out := []*domain.Booking{}
	for _, b := range r.byID {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *stubBookingRepo) ListByUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	return r.newestFirst(func(b *domain.Booking) bool { return b.UserID == userID }), nil
}

func (r *stubBookingRepo) ListByListingIDs(_ context.Context, ids []string) ([]*domain.Booking, error) {
	r.listedListing = append([]string(nil), ids...)
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return r.newestFirst(func(b *domain.Booking) bool {
		_, ok := set[b.ListingID]
		return ok
	}), nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubImageStore struct {
	saved   map[string][]byte
	deleted []string
	seq     int
	saveErr error
	// failAfter makes every save past the first failAfter ones fail.
	failAfter int
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{saved: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if s.failAfter > 0 && s.seq >= s.failAfter {
		return "", errors.New("store full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.seq++
	name := fmt.Sprintf("%d-%s", s.seq, filename)
	s.saved[name] = data
	return "/uploads/" + name, nil
}

func (s *stubImageStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	data, ok := s.saved[name]
	if !ok {
		return nil, "", errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubImageStore) Delete(_ context.Context, name string) error {
	delete(s.saved, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *stubImageStore) Backend() string { return "stub" }

func upload(name, body string) ports.ImageUpload {
	return ports.ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBufferString(body)), nil
		},
	}
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[scope+"|"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key, id string) error {
	s.keys[scope+"|"+key] = id
	return nil
}
