package domain

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"
)

// MaxListingImages caps the number of images attached on creation.
const MaxListingImages = 10

// Listing is a PG (paying-guest accommodation) owned by a broker account.
type Listing struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rent        float64   `json:"rent"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	Seats       int       `json:"seats"`
	AC          bool      `json:"ac"`
	Contact     string    `json:"contact"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities"`
	Images      []string  `json:"images"`
	BrokerID    string    `json:"broker"`
	BrokerEmail string    `json:"brokerEmail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FirstImage returns the first image reference, or nil when there is none.
func (l *Listing) FirstImage() *string {
	if len(l.Images) == 0 {
		return nil
	}
	img := l.Images[0]
	return &img
}

// ListingPatch is a partial update. Nil fields are left untouched.
// BrokerID and BrokerEmail exist only so that client attempts to rewrite
// ownership can be recognised and dropped; see WithoutOwnership.
type ListingPatch struct {
	Name        *string
	Rent        *float64
	Price       *float64
	Location    *string
	City        *string
	Seats       *int
	AC          *bool
	Contact     *string
	Description *string
	Amenities   *[]string
	Images      *[]string

	BrokerID    *string
	BrokerEmail *string
}

// WithoutOwnership returns a copy of the patch with the owner fields cleared.
func (p ListingPatch) WithoutOwnership() ListingPatch {
	p.BrokerID = nil
	p.BrokerEmail = nil
	return p
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p.Name == nil && p.Rent == nil && p.Price == nil && p.Location == nil &&
		p.City == nil && p.Seats == nil && p.AC == nil && p.Contact == nil &&
		p.Description == nil && p.Amenities == nil && p.Images == nil
}

// Validate rejects patches that blank out a required field or carry
// out-of-range numbers.
func (p ListingPatch) Validate() error {
	var blank []string
	for field, v := range map[string]*string{
		"name":     p.Name,
		"location": p.Location,
		"city":     p.City,
		"contact":  p.Contact,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			blank = append(blank, field)
		}
	}
	if len(blank) > 0 {
		slices.Sort(blank)
		return NewValidationError("required fields cannot be empty", blank...)
	}
	for field, v := range map[string]*float64{"rent": p.Rent, "price": p.Price} {
		if v != nil && !isFinite(*v) {
			return NewValidationError("must be a finite number", field)
		}
	}
	if p.Rent != nil && *p.Rent < 0 {
		return NewValidationError("must not be negative", "rent")
	}
	if p.Price != nil && *p.Price < 0 {
		return NewValidationError("must not be negative", "price")
	}
	if p.Seats != nil && *p.Seats < 1 {
		return NewValidationError("must be at least 1", "seats")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseAmenities decodes the serialized amenity list sent by clients
// (a JSON array of strings). An empty input yields an empty list.
// Order is preserved and blank labels are dropped.
func ParseAmenities(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil, NewValidationError("must be a JSON array of strings", "amenities")
	}
	return CleanAmenities(labels), nil
}

// CleanAmenities trims labels and drops blank ones, keeping order.
func CleanAmenities(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
