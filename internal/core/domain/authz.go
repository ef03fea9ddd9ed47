package domain

// CanCreateListing reports whether the caller may publish listings.
func CanCreateListing(caller Caller) bool {
	return caller.Authenticated() && caller.Role == RoleBroker
}

// CanMutateListing reports whether the caller owns the listing.
func CanMutateListing(caller Caller, l *Listing) bool {
	return caller.Authenticated() && l != nil && caller.ID == l.BrokerID
}

// CanMutateBooking reports whether the caller is the renter who made the booking.
func CanMutateBooking(caller Caller, b *Booking) bool {
	return caller.Authenticated() && b != nil && caller.ID == b.UserID
}

// CanViewBrokerBookings reports whether the caller may see the bookings made
// on brokerID's listings. Only that broker may.
func CanViewBrokerBookings(caller Caller, brokerID string) bool {
	return CanCreateListing(caller) && caller.ID == brokerID
}
