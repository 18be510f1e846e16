package blobstore

import (
	"context"
	"fmt"

	"sheetmap/internal/domain"
)

// Config selects and configures an object storage backend.
type Config struct {
	Location string // storage URI, see ParseLocation

	S3 S3Config

	GCSKeyFile string

	AzureAccountName string
	AzureAccountKey  string
}

// New opens the backend named by cfg.Location's scheme.
func New(ctx context.Context, cfg Config) (domain.BlobRepository, error) {
	loc, err := ParseLocation(cfg.Location)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case SchemeS3:
		return NewS3Store(cfg.S3, loc)
	case SchemeGCS:
		return NewGCSStore(ctx, cfg.GCSKeyFile, loc)
	case SchemeAzure:
		return NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, loc)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", loc.Scheme)
	}
}
