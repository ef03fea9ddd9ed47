package ports

import (
	"context"
	"io"
)

// ImageStore is the blob store behind listing images. Save returns the
// public reference ("/uploads/<name>") under which Open can later find it.
// Deleting a missing image is not an error.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
	Backend() string
}

// ImageUpload is an uploaded file that has not been stored yet.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
