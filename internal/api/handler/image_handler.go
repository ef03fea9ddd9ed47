package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/ports"
)

// ImageHandler serves stored listing images.
type ImageHandler struct {
	store ports.ImageStore
}

func NewImageHandler(store ports.ImageStore) *ImageHandler {
	return &ImageHandler{store: store}
}

// Serve handles GET /uploads/:name.
//
// @Summary      Fetch a PG image
// @Tags         uploads
// @Produce      octet-stream
// @Param        name  path  string  true  "Image name"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /uploads/{name} [get]
func (h *ImageHandler) Serve(c echo.Context) error {
	rc, contentType, err := h.store.Open(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	defer rc.Close()

	// Names are random and never reused.
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, contentType, rc)
}
