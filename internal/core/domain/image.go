package domain

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadsPrefix is the public path under which stored images are served.
const UploadsPrefix = "/uploads/"

// NewImageName generates a unique object name that keeps the upload's
// extension. Client file names never reach storage.
func NewImageName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// ImageRef is the public reference stored on listings for an image name.
func ImageRef(name string) string {
	return UploadsPrefix + name
}

// ImageName is the inverse of ImageRef.
func ImageName(ref string) string {
	return strings.TrimPrefix(ref, UploadsPrefix)
}
