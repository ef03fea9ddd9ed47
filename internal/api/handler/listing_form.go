package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

const imagesField = "images"

// amenitiesField decodes either a JSON array of labels or a string holding
// one, which is what multipart clients send through JSON bodies too.
type amenitiesField struct {
	set    bool
	labels []string
	err    error
}

func (a *amenitiesField) UnmarshalJSON(data []byte) error {
	a.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		a.set = false
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		a.labels, a.err = domain.ParseAmenities(raw)
		return nil
	}

	if err := json.Unmarshal(data, &a.labels); err != nil {
		a.err = domain.NewValidationError("must be a JSON array of strings", "amenities")
	}
	return nil
}

// patch converts the request body into a domain patch.
func (r updateListingRequest) patch() (domain.ListingPatch, error) {
	p := domain.ListingPatch{
		Name:        r.Name,
		Rent:        r.Rent,
		Price:       r.Price,
		Location:    r.Location,
		City:        r.City,
		Seats:       r.Seats,
		AC:          r.AC,
		Contact:     r.Contact,
		Description: r.Description,
		Images:      r.Images,
		BrokerID:    r.Broker,
		BrokerEmail: r.BrokerEmail,
	}
	if r.Amenities.set {
		if r.Amenities.err != nil {
			return domain.ListingPatch{}, r.Amenities.err
		}
		labels := r.Amenities.labels
		if labels == nil {
			labels = []string{}
		}
		p.Amenities = &labels
	}
	return p, nil
}

// createListingInput reads the multipart listing form. Text fields are
// trimmed by the service; malformed numbers are reported per field.
func createListingInput(c echo.Context) (ports.CreateListingInput, error) {
	in := ports.CreateListingInput{
		Caller:      callerFrom(c),
		Name:        c.FormValue("name"),
		Location:    c.FormValue("location"),
		City:        c.FormValue("city"),
		Contact:     c.FormValue("contact"),
		Description: c.FormValue("description"),
		Amenities:   c.FormValue("amenities"),
	}

	var bad []string
	var err error
	if in.Rent, err = formFloat(c, "rent"); err != nil {
		bad = append(bad, "rent")
	}
	if in.Price, err = formFloat(c, "price"); err != nil {
		bad = append(bad, "price")
	}
	if in.Seats, err = formInt(c, "seats"); err != nil {
		bad = append(bad, "seats")
	}
	if in.AC, err = formBool(c, "ac"); err != nil {
		bad = append(bad, "ac")
	}
	if len(bad) > 0 {
		return in, domain.NewValidationError("malformed value", bad...)
	}

	files, err := formFiles(c)
	if err != nil {
		return in, err
	}
	for _, fh := range files {
		in.Images = append(in.Images, imageUpload(fh))
	}
	return in, nil
}

func formFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s: not a finite number", name)
	}
	return &v, nil
}

func formInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(raw, "on") || strings.EqualFold(raw, "yes") {
		v := true
		return &v, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// formFiles returns the uploaded images. A non-multipart body simply carries
// no images.
func formFiles(c echo.Context) ([]*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	return form.File[imagesField], nil
}

func imageUpload(fh *multipart.FileHeader) ports.ImageUpload {
	return ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
