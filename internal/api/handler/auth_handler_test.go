package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/esypg/pg-marketplace/internal/api/handler"
	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	loginFn    func(ctx context.Context, email, password, role string) (*ports.LoginResult, error)
	meFn       func(ctx context.Context, caller domain.Caller) (*domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password, role string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password, role)
}

func (s *stubAuthService) Me(ctx context.Context, caller domain.Caller) (*domain.Account, error) {
	return s.meFn(ctx, caller)
}

func TestAuthHandler_RegisterBroker_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Name != "Ravi" || in.Role != domain.RoleBroker || in.AgencyName != "Ravi Homes" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Account{ID: "b1", Name: in.Name, Email: in.Email, Role: in.Role, AgencyName: in.AgencyName, PasswordHash: "hash"}, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/register-broker", h.RegisterBroker)

	rec := doJSON(e, http.MethodPost, "/auth/register-broker", `{"name":"Ravi","email":"ravi@x.com","password":"p1","agencyName":"Ravi Homes"}`)
	expectStatus(t, rec, http.StatusCreated)

	resp := decode(t, rec)
	if resp["message"] != "Broker registered successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	account, ok := resp["account"].(map[string]any)
	if !ok {
		t.Fatalf("expected account in response")
	}
	if account["role"] != "broker" || account["agencyName"] != "Ravi Homes" {
		t.Fatalf("unexpected account payload: %+v", account)
	}
	if _, leaked := account["password"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
	if _, leaked := account["PasswordHash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestAuthHandler_RegisterUser_ForcesRole(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Role != domain.RoleUser {
				t.Fatalf("expected user role, got %s", in.Role)
			}
			return &domain.Account{ID: "u1", Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/register-user", h.RegisterUser)

	rec := doJSON(e, http.MethodPost, "/auth/register-user", `{"name":"Asha","email":"asha@x.com","password":"p2","role":"broker"}`)
	expectStatus(t, rec, http.StatusCreated)
	if decode(t, rec)["message"] != "User registered successfully" {
		t.Fatalf("unexpected message")
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/register-user", h.RegisterUser)

	rec := doJSON(e, http.MethodPost, "/auth/register-user", `{"name":"Bob","email":"bob@x.com","password":"p"}`)
	expectStatus(t, rec, http.StatusConflict)
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/register-user", h.RegisterUser)

	rec := doJSON(e, http.MethodPost, "/auth/register-user", "not-json")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(e, http.MethodPost, "/auth/register-user", `{"name":"Bob","email":"not-an-email","password":"p"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(e, http.MethodPost, "/auth/register-user", `{"email":"bob@x.com"}`)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAuthHandler_LoginBroker_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password, role string) (*ports.LoginResult, error) {
			if email != "ravi@x.com" || password != "p1" || role != domain.RoleBroker {
				t.Fatalf("unexpected args: %s %s %s", email, password, role)
			}
			return &ports.LoginResult{
				Token:   "token123",
				Account: &domain.Account{ID: "b1", Name: "Ravi", Email: email, Role: role},
			}, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/login-broker", h.LoginBroker)

	rec := doJSON(e, http.MethodPost, "/auth/login-broker", `{"email":"ravi@x.com","password":"p1"}`)
	expectStatus(t, rec, http.StatusOK)

	resp := decode(t, rec)
	want := map[string]any{"token": "token123", "role": "broker", "name": "Ravi", "email": "ravi@x.com", "id": "b1"}
	for k, v := range want {
		if resp[k] != v {
			t.Fatalf("expected %s=%v, got %v", k, v, resp[k])
		}
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"wrong role or unknown email", domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, email, password, role string) (*ports.LoginResult, error) {
					return nil, tc.err
				},
			}
			h := handler.NewAuthHandler(stub)
			e.POST("/auth/login-user", h.LoginUser)

			rec := doJSON(e, http.MethodPost, "/auth/login-user", `{"email":"asha@x.com","password":"bad"}`)
			expectStatus(t, rec, tc.code)
		})
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password, role string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.POST("/auth/login-user", h.LoginUser)

	expectStatus(t, doJSON(e, http.MethodPost, "/auth/login-user", "{"), http.StatusBadRequest)
	expectStatus(t, doJSON(e, http.MethodPost, "/auth/login-user", `{"email":"asha@x.com"}`), http.StatusBadRequest)
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		meFn: func(ctx context.Context, caller domain.Caller) (*domain.Account, error) {
			if caller != renter {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			return &domain.Account{ID: caller.ID, Name: "Asha", Role: caller.Role}, nil
		},
	}
	h := handler.NewAuthHandler(stub)
	e.GET("/auth/me", h.Me, as(renter))

	rec := doJSON(e, http.MethodGet, "/auth/me", "")
	expectStatus(t, rec, http.StatusOK)
	if decode(t, rec)["id"] != "u1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
