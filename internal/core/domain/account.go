package domain

import "time"

const (
	RoleUser   = "user"
	RoleBroker = "broker"
)

// Account models a registered principal. Renters and brokers share the same
// shape and are told apart by Role.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AgencyName   string    `json:"agencyName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleBroker
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID   string
	Role string
}

// Authenticated reports whether the caller carries an identity at all.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}
