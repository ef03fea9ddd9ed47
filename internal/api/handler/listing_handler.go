package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/ports"
)

// ListingHandler handles HTTP requests for PG listings.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Create handles POST /pgs/add.
//
// @Summary      Publish a PG
// @Tags         pgs
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  true   "Name"
// @Param        rent         formData  number  true   "Monthly rent"
// @Param        price        formData  number  false  "Price"
// @Param        location     formData  string  true   "Locality"
// @Param        city         formData  string  true   "City"
// @Param        seats        formData  integer false  "Seats (default 1)"
// @Param        ac           formData  boolean false  "Air conditioned"
// @Param        contact      formData  string  true   "Contact"
// @Param        description  formData  string  false  "Description"
// @Param        amenities    formData  string  false  "JSON array of labels"
// @Param        images       formData  file    false  "Up to 10 images"
// @Success      201  {object}  listingResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /pgs/add [post]
func (h *ListingHandler) Create(c echo.Context) error {
	in, err := createListingInput(c)
	if err != nil {
		return err
	}

	listing, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, listingResponse{Message: "PG added successfully", PG: listing})
}

// ListAll handles GET /pgs.
//
// @Summary      List all PGs
// @Tags         pgs
// @Produce      json
// @Success      200  {array}  domain.Listing
// @Router       /pgs [get]
func (h *ListingHandler) ListAll(c echo.Context) error {
	listings, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}

// ListMine handles GET /pgs/broker/my-pgs.
//
// @Summary      List the caller's PGs
// @Tags         pgs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Listing
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /pgs/broker/my-pgs [get]
func (h *ListingHandler) ListMine(c echo.Context) error {
	listings, err := h.service.ListMine(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listings)
}

// Get handles GET /pgs/:id.
//
// @Summary      Get a PG
// @Tags         pgs
// @Produce      json
// @Param        id   path      string  true  "PG id"
// @Success      200  {object}  domain.Listing
// @Failure      404  {object}  errorResponse
// @Router       /pgs/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	listing, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

// Update handles PUT /pgs/:id.
//
// @Summary      Update a PG
// @Tags         pgs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "PG id"
// @Param        body  body      updateListingRequest  true  "Fields to change"
// @Success      200   {object}  listingResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /pgs/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	patch, err := req.patch()
	if err != nil {
		return err
	}

	listing, err := h.service.Update(c.Request().Context(), c.Param("id"), patch, callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingResponse{Message: "PG updated", PG: listing})
}

// Delete handles DELETE /pgs/:id.
//
// @Summary      Delete a PG
// @Tags         pgs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "PG id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /pgs/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), callerFrom(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "PG deleted"})
}
