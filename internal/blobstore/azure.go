package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"sheetmap/internal/domain"
)

var _ domain.BlobRepository = (*AzureStore)(nil)

// AzureStore stores blobs in an Azure Blob Storage container. The blob ETag
// is the version; conditional writes use If-Match.
type AzureStore struct {
	client *azblob.Client
	loc    Location
}

// NewAzureStore creates a client authenticated with an account key.
func NewAzureStore(accountName, accountKey string, loc Location) (*AzureStore, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("Azure account name and key are required")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureStore{client: client, loc: loc}, nil
}

// Get downloads the blob for key.
func (s *AzureStore) Get(ctx context.Context, key string) (*domain.Blob, error) {
	resp, err := s.client.DownloadStream(ctx, s.loc.Bucket, s.loc.ObjectKey(key), nil)
	if err != nil {
		return nil, s.mapError(key, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	b := &domain.Blob{Key: key, Data: data}
	if resp.ETag != nil {
		b.Version = unquoteETag(string(*resp.ETag))
	}
	if resp.LastModified != nil {
		b.UpdatedAt = *resp.LastModified
	}
	return b, nil
}

// Put uploads data for key, conditional on ifVersion when set.
func (s *AzureStore) Put(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error) {
	contentType := "application/json"
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if ifVersion != "" {
		etag := azcore.ETag(quoteETag(ifVersion))
		opts.AccessConditions = &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfMatch: &etag},
		}
	}
	resp, err := s.client.UploadBuffer(ctx, s.loc.Bucket, s.loc.ObjectKey(key), data, opts)
	if err != nil {
		return nil, s.mapError(key, ifVersion, err)
	}
	b := &domain.Blob{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	if resp.ETag != nil {
		b.Version = unquoteETag(string(*resp.ETag))
	}
	if resp.LastModified != nil {
		b.UpdatedAt = *resp.LastModified
	}
	return b, nil
}

// Delete removes key.
func (s *AzureStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteBlob(ctx, s.loc.Bucket, s.loc.ObjectKey(key), nil); err != nil {
		return s.mapError(key, "", err)
	}
	return nil
}

// List returns blob keys with the given prefix.
func (s *AzureStore) List(ctx context.Context, prefix string) ([]string, error) {
	p := s.loc.ListPrefix(prefix)
	pager := s.client.NewListBlobsFlatPager(s.loc.Bucket, &azblob.ListBlobsFlatOptions{Prefix: &p})
	keys := []string{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.loc, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if k, ok := s.loc.BlobKey(*item.Name); ok {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func (s *AzureStore) mapError(key, ifVersion string, err error) error {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
		return domain.ErrNotFound("blob %q not found", key)
	case bloberror.HasCode(err, bloberror.ConditionNotMet):
		return &domain.VersionConflictError{Key: key, Expected: ifVersion}
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Errorf("azure %q: %s: %w", key, respErr.ErrorCode, err)
	}
	return fmt.Errorf("azure %q: %w", key, err)
}
