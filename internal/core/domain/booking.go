package domain

import "time"

// BookingStatusBooked is the only status a booking ever has.
const BookingStatusBooked = "Booked"

// Booking is a renter's reservation of a PG. Name, Price and Image are a
// snapshot of the listing taken at creation and are never refreshed, so a
// booking stays displayable after its listing is edited or deleted.
type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	ListingID string    `json:"pg"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     *string   `json:"image"`
	Status    string    `json:"status"`
	BookedAt  time.Time `json:"bookedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBooking snapshots the listing's display fields into a fresh booking.
func NewBooking(userID string, l *Listing, now time.Time) *Booking {
	return &Booking{
		UserID:    userID,
		ListingID: l.ID,
		Name:      l.Name,
		Price:     l.Price,
		Image:     l.FirstImage(),
		Status:    BookingStatusBooked,
		BookedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BookingUser is the renter block of a broker-facing booking view.
type BookingUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingListing is the listing block of a broker-facing booking view.
type BookingListing struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Images   []string `json:"images"`
	BrokerID string   `json:"broker"`
}

// BrokerBooking is a booking expanded with its renter and listing.
type BrokerBooking struct {
	Booking
	User BookingUser    `json:"user"`
	PG   BookingListing `json:"pg"`
}
