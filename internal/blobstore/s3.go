package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"sheetmap/internal/domain"
)

var _ domain.BlobRepository = (*S3Store)(nil)

// S3Config holds static credentials for an S3-compatible endpoint.
type S3Config struct {
	KeyID    string
	Secret   string
	Endpoint string // host[:port] without scheme; empty means AWS
	Region   string
	// URLStyle is "path" or "vhost"; path style is the default since most
	// S3-compatible stores require it.
	URLStyle string
}

// S3Store stores blobs as JSON objects. The object ETag is the version;
// conditional writes use If-Match.
type S3Store struct {
	client *s3.Client
	loc    Location
}

// NewS3Store creates an S3 client for loc.
func NewS3Store(cfg S3Config, loc Location) (*S3Store, error) {
	if cfg.KeyID == "" || cfg.Secret == "" || cfg.Region == "" {
		return nil, fmt.Errorf("S3 config is incomplete")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.Secret, ""),
		UsePathStyle: cfg.URLStyle != "vhost",
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String("https://" + cfg.Endpoint)
	}
	return &S3Store{client: s3.New(opts), loc: loc}, nil
}

// Get downloads the object for key.
func (s *S3Store) Get(ctx context.Context, key string) (*domain.Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.loc.Bucket),
		Key:    aws.String(s.loc.ObjectKey(key)),
	})
	if err != nil {
		return nil, s.mapError(key, "", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return &domain.Blob{
		Key:       key,
		Data:      data,
		Version:   unquoteETag(aws.ToString(out.ETag)),
		UpdatedAt: aws.ToTime(out.LastModified),
	}, nil
}

// Put uploads data for key, conditional on ifVersion when set.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.loc.Bucket),
		Key:         aws.String(s.loc.ObjectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if ifVersion != "" {
		in.IfMatch = aws.String(quoteETag(ifVersion))
	}
	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return nil, s.mapError(key, ifVersion, err)
	}
	return &domain.Blob{
		Key:       key,
		Data:      data,
		Version:   unquoteETag(aws.ToString(out.ETag)),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Delete removes key. S3 deletes are idempotent, so existence is checked
// first.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	obj := aws.String(s.loc.ObjectKey(key))
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.loc.Bucket), Key: obj}); err != nil {
		return s.mapError(key, "", err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.loc.Bucket), Key: obj}); err != nil {
		return s.mapError(key, "", err)
	}
	return nil
}

// List returns blob keys with the given prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.loc.Bucket),
		Prefix: aws.String(s.loc.ListPrefix(prefix)),
	})
	keys := []string{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.loc, err)
		}
		for _, obj := range page.Contents {
			if k, ok := s.loc.BlobKey(aws.ToString(obj.Key)); ok {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func (s *S3Store) mapError(key, ifVersion string, err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return domain.ErrNotFound("blob %q not found", key)
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return domain.ErrNotFound("blob %q not found", key)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return domain.ErrNotFound("blob %q not found", key)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return &domain.VersionConflictError{Key: key, Expected: ifVersion}
		}
	}
	return fmt.Errorf("s3 %q: %w", key, err)
}
