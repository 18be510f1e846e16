package domain

import (
	"context"
	"time"
)

// Blob keys, one per persisted document.
const (
	KeyInputDataset       = "datasets/input"
	KeyOutputDataset      = "datasets/output"
	KeyMappings           = "mappings"
	KeyLookups            = "lookups"
	KeyDefaultFields      = "default-fields"
	KeyDefaultFieldValues = "default-fields/mappings"
	KeyDefaultRules       = "rules/default"
	KeyUserRules          = "rules/user"
)

// DatasetKey returns the blob key for a dataset kind.
func DatasetKey(kind DatasetKind) string {
	if kind == DatasetOutput {
		return KeyOutputDataset
	}
	return KeyInputDataset
}

// Blob is one stored JSON document with its version tag.
type Blob struct {
	Key       string
	Data      []byte
	Version   string
	UpdatedAt time.Time
}

// BlobRepository stores JSON documents under named keys.
//
// Put with a non-empty ifVersion succeeds only if the stored version equals
// it, and otherwise returns *VersionConflictError. ifVersion "" writes
// unconditionally. Get of a missing key returns *NotFoundError.
type BlobRepository interface {
	Get(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, data []byte, ifVersion string) (*Blob, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// AuditRepository provides operations for audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}
