package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /bookings safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /bookings.
// A replayed Idempotency-Key returns the original booking with 200.
//
// @Summary      Book a PG
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Client-generated key for safe retries"
// @Param        body             body      createBookingRequest  true   "PG to book"
// @Success      201              {object}  domain.Booking
// @Success      200              {object}  domain.Booking
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), ports.CreateBookingInput{
		Caller:         callerFrom(c),
		ListingID:      req.PGID,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, res.Booking)
	}
	return c.JSON(http.StatusCreated, res.Booking)
}

// ListMine handles GET /bookings/me.
//
// @Summary      List the caller's bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Booking
// @Failure      401  {object}  errorResponse
// @Router       /bookings/me [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	bookings, err := h.service.ListMine(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListForBroker handles GET /bookings/broker/:id.
//
// @Summary      Bookings on a broker's PGs
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Broker account id"
// @Success      200  {array}   domain.BrokerBooking
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /bookings/broker/{id} [get]
func (h *BookingHandler) ListForBroker(c echo.Context) error {
	views, err := h.service.ListForBroker(c.Request().Context(), c.Param("id"), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Delete handles DELETE /bookings/:id.
//
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), callerFrom(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking deleted successfully"})
}
