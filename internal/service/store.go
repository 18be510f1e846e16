// Package service implements the persistence operations behind the HTTP
// API: typed documents stored as JSON blobs, with audit logging and
// optimistic concurrency.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sheetmap/internal/domain"
)

// Versioned is a decoded document plus the version it was read or written at.
type Versioned[T any] struct {
	Value     T
	Version   string
	UpdatedAt time.Time
}

// document binds a blob key to its Go type. empty supplies the value of a
// document that has never been written.
type document[T any] struct {
	key   string
	empty func() T
}

func (d document[T]) get(ctx context.Context, repo domain.BlobRepository) (Versioned[T], error) {
	b, err := repo.Get(ctx, d.key)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return Versioned[T]{Value: d.empty()}, nil
	}
	if err != nil {
		return Versioned[T]{}, fmt.Errorf("load %s: %w", d.key, err)
	}
	v := d.empty()
	if bytes.Equal(bytes.TrimSpace(b.Data), []byte("null")) {
		// A stored null would decode into a nil pointer or slice.
		return Versioned[T]{Value: v, Version: b.Version, UpdatedAt: b.UpdatedAt}, nil
	}
	if err := json.Unmarshal(b.Data, &v); err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			return Versioned[T]{}, err
		}
		var rerr *domain.InvalidRowFormatError
		if errors.As(err, &rerr) {
			return Versioned[T]{}, err
		}
		return Versioned[T]{}, &domain.ParseError{Source: d.key, Err: err}
	}
	return Versioned[T]{Value: v, Version: b.Version, UpdatedAt: b.UpdatedAt}, nil
}

func (d document[T]) put(ctx context.Context, repo domain.BlobRepository, v T, ifVersion string) (Versioned[T], error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Versioned[T]{}, fmt.Errorf("encode %s: %w", d.key, err)
	}
	b, err := repo.Put(ctx, d.key, data, ifVersion)
	if err != nil {
		return Versioned[T]{}, err
	}
	return Versioned[T]{Value: v, Version: b.Version, UpdatedAt: b.UpdatedAt}, nil
}

// update runs read-modify-write with a version check, retrying up to
// attempts times when another writer got in first. mutate may return an
// error to abort without writing.
func (d document[T]) update(ctx context.Context, repo domain.BlobRepository, attempts int, mutate func(*T) error) (Versioned[T], error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		cur, err := d.get(ctx, repo)
		if err != nil {
			return Versioned[T]{}, err
		}
		if err := mutate(&cur.Value); err != nil {
			return Versioned[T]{}, err
		}
		// An unwritten document has no version, so its first write is
		// unconditional.
		out, err := d.put(ctx, repo, cur.Value, cur.Version)
		var vc *domain.VersionConflictError
		if errors.As(err, &vc) {
			lastErr = err
			continue
		}
		return out, err
	}
	return Versioned[T]{}, lastErr
}

var (
	datasetDoc = func(kind domain.DatasetKind) document[domain.Dataset] {
		return document[domain.Dataset]{
			key:   domain.DatasetKey(kind),
			empty: func() domain.Dataset { return domain.Dataset{Headers: []string{}, Rows: []domain.Record{}} },
		}
	}
	mappingsDoc = document[[]domain.MappingEntry]{
		key:   domain.KeyMappings,
		empty: func() []domain.MappingEntry { return []domain.MappingEntry{} },
	}
	lookupsDoc = document[*domain.LookupRegistry]{
		key:   domain.KeyLookups,
		empty: func() *domain.LookupRegistry { return &domain.LookupRegistry{} },
	}
	defaultFieldsDoc = document[domain.ColumnBlob]{
		key:   domain.KeyDefaultFields,
		empty: func() domain.ColumnBlob { return domain.ColumnBlob{} },
	}
	fieldValuesDoc = document[[]domain.FieldValue]{
		key:   domain.KeyDefaultFieldValues,
		empty: func() []domain.FieldValue { return []domain.FieldValue{} },
	}
	userRulesDoc = document[[]domain.Rule]{
		key:   domain.KeyUserRules,
		empty: func() []domain.Rule { return []domain.Rule{} },
	}
)
