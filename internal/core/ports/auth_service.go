package ports

import (
	"context"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	AgencyName string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password, role string) (*LoginResult, error)
	Me(ctx context.Context, caller domain.Caller) (*domain.Account, error)
}
