package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

const (
	imageBucket    = "images"
	backendGridFS  = "gridfs"
	defaultImageCT = "application/octet-stream"
)

// GridFSImageStore keeps listing images in a GridFS bucket of the main
// database.
type GridFSImageStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSImageStore(db *mongo.Database) (*GridFSImageStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imageBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSImageStore{bucket: bucket}, nil
}

// Save streams r into GridFS under a fresh name and returns its public
// reference.
func (s *GridFSImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := domain.NewImageName(filename)
	if contentType == "" {
		contentType = defaultImageCT
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType":  contentType,
		"originalName": filename,
	})

	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("close upload stream: %w", err)
	}
	return domain.ImageRef(name), nil
}

// Open returns a reader over the named image and its content type.
func (s *GridFSImageStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", domain.ErrImageNotFound
		}
		return nil, "", fmt.Errorf("open download stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, contentTypeOf(stream.GetFile().Metadata), nil
}

// Delete removes every GridFS file stored under name.
func (s *GridFSImageStore) Delete(ctx context.Context, name string) error {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": name})
	if err != nil {
		return fmt.Errorf("find image: %w", err)
	}
	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("decode image files: %w", err)
	}
	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete image: %w", err)
		}
	}
	return nil
}

func (s *GridFSImageStore) Backend() string { return backendGridFS }

func contentTypeOf(metadata bson.Raw) string {
	if metadata == nil {
		return defaultImageCT
	}
	if v, err := metadata.LookupErr("contentType"); err == nil {
		if ct, ok := v.StringValueOK(); ok && ct != "" {
			return ct
		}
	}
	return defaultImageCT
}
