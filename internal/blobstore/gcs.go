package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"sheetmap/internal/domain"
)

var _ domain.BlobRepository = (*GCSStore)(nil)

// GCSStore stores blobs in Google Cloud Storage. The object generation is
// the version; conditional writes use a GenerationMatch precondition.
type GCSStore struct {
	client *storage.Client
	loc    Location
}

// NewGCSStore creates a client authenticated with a service-account key
// file, or application default credentials when keyFile is empty.
func NewGCSStore(ctx context.Context, keyFile string, loc Location) (*GCSStore, error) {
	var opts []option.ClientOption
	if keyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, keyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{client: client, loc: loc}, nil
}

// Close releases the client.
func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.loc.Bucket).Object(s.loc.ObjectKey(key))
}

// Get downloads the object for key.
func (s *GCSStore) Get(ctx context.Context, key string) (*domain.Blob, error) {
	r, err := s.object(key).NewReader(ctx)
	if err != nil {
		return nil, s.mapError(key, "", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return &domain.Blob{
		Key:       key,
		Data:      data,
		Version:   strconv.FormatInt(r.Attrs.Generation, 10),
		UpdatedAt: r.Attrs.LastModified,
	}, nil
}

// Put uploads data for key, conditional on ifVersion when set.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error) {
	obj := s.object(key)
	if ifVersion != "" {
		gen, err := strconv.ParseInt(ifVersion, 10, 64)
		if err != nil {
			return nil, &domain.VersionConflictError{Key: key, Expected: ifVersion}
		}
		obj = obj.If(storage.Conditions{GenerationMatch: gen})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, s.mapError(key, ifVersion, err)
	}
	if err := w.Close(); err != nil {
		return nil, s.mapError(key, ifVersion, err)
	}
	attrs := w.Attrs()
	return &domain.Blob{
		Key:       key,
		Data:      data,
		Version:   strconv.FormatInt(attrs.Generation, 10),
		UpdatedAt: attrs.Updated,
	}, nil
}

// Delete removes key.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.object(key).Delete(ctx); err != nil {
		return s.mapError(key, "", err)
	}
	return nil
}

// List returns blob keys with the given prefix.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.loc.Bucket).Objects(ctx, &storage.Query{Prefix: s.loc.ListPrefix(prefix)})
	keys := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.loc, err)
		}
		if k, ok := s.loc.BlobKey(attrs.Name); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *GCSStore) mapError(key, ifVersion string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound("blob %q not found", key)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return domain.ErrNotFound("blob %q not found", key)
		case http.StatusPreconditionFailed:
			return &domain.VersionConflictError{Key: key, Expected: ifVersion}
		}
	}
	return fmt.Errorf("gcs %q: %w", key, err)
}
