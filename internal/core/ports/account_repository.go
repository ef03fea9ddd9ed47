package ports

import (
	"context"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// AccountRepository is the identity store.
type AccountRepository interface {
	// Create inserts the account and returns it with its generated ID.
	// A duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Account, error)
	// FindByIDs returns the accounts that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
}
