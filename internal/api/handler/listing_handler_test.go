package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/api/handler"
	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
)

type stubListingService struct {
	createFn func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error)
	updateFn func(ctx context.Context, id string, patch domain.ListingPatch, caller domain.Caller) (*domain.Listing, error)
	deleteFn func(ctx context.Context, id string, caller domain.Caller) error
	listing  *domain.Listing
}

func (s *stubListingService) Create(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	return s.createFn(ctx, in)
}

func (s *stubListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return []*domain.Listing{s.listing}, nil
}

func (s *stubListingService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Listing, error) {
	if !domain.CanCreateListing(caller) {
		return nil, domain.ErrForbidden
	}
	return []*domain.Listing{s.listing}, nil
}

func (s *stubListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if s.listing == nil || id != s.listing.ID {
		return nil, domain.ErrListingNotFound
	}
	return s.listing, nil
}

func (s *stubListingService) Update(ctx context.Context, id string, patch domain.ListingPatch, caller domain.Caller) (*domain.Listing, error) {
	return s.updateFn(ctx, id, patch, caller)
}

func (s *stubListingService) Delete(ctx context.Context, id string, caller domain.Caller) error {
	return s.deleteFn(ctx, id, caller)
}

func sunrise() *domain.Listing {
	return &domain.Listing{
		ID: "pg1", Name: "Sunrise PG", Rent: 8000, Price: 8000, Seats: 1,
		Amenities: []string{"WiFi", "AC"}, Images: []string{"/uploads/a.jpg"},
		BrokerID: "b1", BrokerEmail: "ravi@x.com",
	}
}

func listingForm(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestListingHandler_Create_Multipart(t *testing.T) {
	e := newEcho()
	stub := &stubListingService{
		createFn: func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
			if in.Caller != broker {
				t.Fatalf("unexpected caller: %+v", in.Caller)
			}
			if in.Name != "Sunrise PG" || in.Rent == nil || *in.Rent != 8000 || in.Seats == nil || *in.Seats != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.AC == nil || !*in.AC {
				t.Fatalf("expected ac=true")
			}
			if in.Price != nil {
				t.Fatalf("price was not sent and must stay nil")
			}
			if in.Amenities != `["WiFi","AC"]` {
				t.Fatalf("unexpected amenities: %q", in.Amenities)
			}
			if len(in.Images) != 1 || in.Images[0].Filename != "front.jpg" || in.Images[0].Size != 4 {
				t.Fatalf("unexpected images: %+v", in.Images)
			}
			rc, err := in.Images[0].Open()
			if err != nil {
				t.Fatalf("open upload: %v", err)
			}
			defer rc.Close()
			data, _ := io.ReadAll(rc)
			if string(data) != "jpeg" {
				t.Fatalf("unexpected upload content: %q", data)
			}
			return sunrise(), nil
		},
	}
	h := handler.NewListingHandler(stub)
	e.POST("/pgs/add", h.Create, as(broker))

	body, ct := listingForm(t, map[string]string{
		"name": "Sunrise PG", "rent": "8000", "seats": "2", "ac": "true",
		"location": "Koramangala", "city": "Bengaluru", "contact": "999",
		"amenities": `["WiFi","AC"]`,
	}, map[string]string{"front.jpg": "jpeg"})

	req := httptest.NewRequest(http.MethodPost, "/pgs/add", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusCreated)
	resp := decode(t, rec)
	if resp["message"] != "PG added successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	pg := resp["pg"].(map[string]any)
	if pg["broker"] != "b1" || pg["brokerEmail"] != "ravi@x.com" {
		t.Fatalf("unexpected pg payload: %+v", pg)
	}
	amenities := pg["amenities"].([]any)
	if len(amenities) != 2 || amenities[0] != "WiFi" || amenities[1] != "AC" {
		t.Fatalf("amenity order not kept: %v", amenities)
	}
}

func TestListingHandler_Create_MalformedNumbers(t *testing.T) {
	e := newEcho()
	stub := &stubListingService{
		createFn: func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := handler.NewListingHandler(stub)
	e.POST("/pgs/add", h.Create, as(broker))

	body, ct := listingForm(t, map[string]string{"name": "X", "rent": "cheap", "seats": "two"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/pgs/add", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode(t, rec)["error"]; msg != "malformed value: rent, seats" {
		t.Fatalf("unexpected error: %v", msg)
	}
}

func TestListingHandler_Create_NonFiniteNumbers(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Infinity"} {
		t.Run(raw, func(t *testing.T) {
			e := newEcho()
			stub := &stubListingService{
				createFn: func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}
			h := handler.NewListingHandler(stub)
			e.POST("/pgs/add", h.Create, as(broker))

			body, ct := listingForm(t, map[string]string{"name": "X", "rent": raw, "price": raw}, nil)
			req := httptest.NewRequest(http.MethodPost, "/pgs/add", body)
			req.Header.Set(echo.HeaderContentType, ct)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			expectStatus(t, rec, http.StatusBadRequest)
			if msg := decode(t, rec)["error"]; msg != "malformed value: rent, price" {
				t.Fatalf("unexpected error: %v", msg)
			}
		})
	}
}

func TestListingHandler_Create_Forbidden(t *testing.T) {
	e := newEcho()
	stub := &stubListingService{
		createFn: func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := handler.NewListingHandler(stub)
	e.POST("/pgs/add", h.Create, as(renter))

	body, ct := listingForm(t, map[string]string{"name": "X"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/pgs/add", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusForbidden)
}

func TestListingHandler_ReadRoutes(t *testing.T) {
	e := newEcho()
	stub := &stubListingService{listing: sunrise()}
	h := handler.NewListingHandler(stub)
	e.GET("/pgs", h.ListAll)
	e.GET("/pgs/:id", h.Get)
	e.GET("/pgs/broker/my-pgs", h.ListMine, as(renter))

	rec := doJSON(e, http.MethodGet, "/pgs", "")
	expectStatus(t, rec, http.StatusOK)

	first := doJSON(e, http.MethodGet, "/pgs/pg1", "")
	second := doJSON(e, http.MethodGet, "/pgs/pg1", "")
	expectStatus(t, first, http.StatusOK)
	if first.Body.String() != second.Body.String() {
		t.Fatalf("repeated reads differ")
	}

	rec = doJSON(e, http.MethodGet, "/pgs/nope", "")
	expectStatus(t, rec, http.StatusNotFound)
	if decode(t, rec)["error"] != "PG not found" {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	expectStatus(t, doJSON(e, http.MethodGet, "/pgs/broker/my-pgs", ""), http.StatusForbidden)
}

func TestListingHandler_Update_PassesPatch(t *testing.T) {
	e := newEcho()
	var got domain.ListingPatch
	stub := &stubListingService{
		updateFn: func(ctx context.Context, id string, patch domain.ListingPatch, caller domain.Caller) (*domain.Listing, error) {
			if id != "pg1" || caller != broker {
				t.Fatalf("unexpected id/caller: %s %+v", id, caller)
			}
			got = patch
			l := sunrise()
			l.Rent = *patch.Rent
			return l, nil
		},
	}
	h := handler.NewListingHandler(stub)
	e.PUT("/pgs/:id", h.Update, as(broker))

	rec := doJSON(e, http.MethodPut, "/pgs/pg1", `{"rent":9000,"broker":"x","brokerEmail":"evil@x.com","amenities":"[\"Laundry\",\"WiFi\"]"}`)
	expectStatus(t, rec, http.StatusOK)

	if got.Rent == nil || *got.Rent != 9000 {
		t.Fatalf("rent not passed")
	}
	if got.Amenities == nil || len(*got.Amenities) != 2 || (*got.Amenities)[0] != "Laundry" {
		t.Fatalf("serialized amenities not decoded: %v", got.Amenities)
	}
	if got.Name != nil {
		t.Fatalf("absent fields must stay nil")
	}

	resp := decode(t, rec)
	if resp["message"] != "PG updated" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}

	rec = doJSON(e, http.MethodPut, "/pgs/pg1", `{"rent":9000,"amenities":["Gym"]}`)
	expectStatus(t, rec, http.StatusOK)
	if got.Amenities == nil || (*got.Amenities)[0] != "Gym" {
		t.Fatalf("array amenities not decoded: %v", got.Amenities)
	}

	expectStatus(t, doJSON(e, http.MethodPut, "/pgs/pg1", `{"rent":1,"amenities":"WiFi"}`), http.StatusBadRequest)
	expectStatus(t, doJSON(e, http.MethodPut, "/pgs/pg1", `{"rent":"x"}`), http.StatusBadRequest)
}

func TestListingHandler_Delete(t *testing.T) {
	e := newEcho()
	stub := &stubListingService{
		deleteFn: func(ctx context.Context, id string, caller domain.Caller) error {
			if caller != broker {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	h := handler.NewListingHandler(stub)
	e.DELETE("/pgs/:id", h.Delete, as(broker))
	e.DELETE("/as-renter/pgs/:id", h.Delete, as(renter))

	rec := doJSON(e, http.MethodDelete, "/pgs/pg1", "")
	expectStatus(t, rec, http.StatusOK)
	if decode(t, rec)["message"] != "PG deleted" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	expectStatus(t, doJSON(e, http.MethodDelete, "/as-renter/pgs/pg1", ""), http.StatusForbidden)
}
