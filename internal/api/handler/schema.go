package handler

import (
	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name       string `json:"name"       validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required"`
	AgencyName string `json:"agencyName"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Message string          `json:"message"`
	Account *domain.Account `json:"account"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    string `json:"id"`
}

// --- Listings ---

// updateListingRequest is the JSON body of PUT /pgs/:id. Every field is
// optional. Amenities accepts either a JSON array or the serialized string
// sent by the listing form. Broker fields are accepted and ignored.
type updateListingRequest struct {
	Name        *string        `json:"name"`
	Rent        *float64       `json:"rent"`
	Price       *float64       `json:"price"`
	Location    *string        `json:"location"`
	City        *string        `json:"city"`
	Seats       *int           `json:"seats"`
	AC          *bool          `json:"ac"`
	Contact     *string        `json:"contact"`
	Description *string        `json:"description"`
	Amenities   amenitiesField `json:"amenities"`
	Images      *[]string      `json:"images"`
	Broker      *string        `json:"broker"`
	BrokerEmail *string        `json:"brokerEmail"`
}

type listingResponse struct {
	Message string          `json:"message"`
	PG      *domain.Listing `json:"pg"`
}

// --- Bookings ---

type createBookingRequest struct {
	PGID string `json:"pgId" validate:"required"`
}
