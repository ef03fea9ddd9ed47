package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterUser creates a renter account.
//
// @Summary      Register a renter
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register-user [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	return h.register(c, domain.RoleUser, "User registered successfully")
}

// RegisterBroker creates a broker account.
//
// @Summary      Register a broker
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details, agencyName optional"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register-broker [post]
func (h *AuthHandler) RegisterBroker(c echo.Context) error {
	return h.register(c, domain.RoleBroker, "Broker registered successfully")
}

func (h *AuthHandler) register(c echo.Context, role, message string) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       role,
		AgencyName: req.AgencyName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: message, Account: account})
}

// LoginUser authenticates a renter and returns a JWT.
//
// @Summary      Renter login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login-user [post]
func (h *AuthHandler) LoginUser(c echo.Context) error {
	return h.login(c, domain.RoleUser)
}

// LoginBroker authenticates a broker and returns a JWT.
//
// @Summary      Broker login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login-broker [post]
func (h *AuthHandler) LoginBroker(c echo.Context) error {
	return h.login(c, domain.RoleBroker)
}

func (h *AuthHandler) login(c echo.Context, role string) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token: res.Token,
		Role:  res.Account.Role,
		Name:  res.Account.Name,
		Email: res.Account.Email,
		ID:    res.Account.ID,
	})
}

// Me returns the authenticated caller's account.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	account, err := h.authService.Me(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}
