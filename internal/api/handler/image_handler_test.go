package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/esypg/pg-marketplace/internal/api/handler"
	"github.com/esypg/pg-marketplace/internal/core/domain"
)

type memImageStore map[string][]byte

func (m memImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m[filename] = data
	return domain.ImageRef(filename), nil
}

func (m memImageStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	data, ok := m[name]
	if !ok {
		return nil, "", domain.ErrImageNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func (m memImageStore) Delete(ctx context.Context, name string) error {
	delete(m, name)
	return nil
}

func (m memImageStore) Backend() string { return "memory" }

func TestImageHandler_Serve(t *testing.T) {
	e := newEcho()
	store := memImageStore{"a.png": []byte("png-bytes")}
	h := handler.NewImageHandler(store)
	e.GET("/uploads/:name", h.Serve)

	rec := doJSON(e, http.MethodGet, "/uploads/a.png", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "png-bytes" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	expectStatus(t, doJSON(e, http.MethodGet, "/uploads/missing.png", ""), http.StatusNotFound)
}
