package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sheetmap/internal/domain"
)

var _ domain.BlobRepository = (*BlobRepo)(nil)

// BlobRepo stores JSON documents in the blobs table. Versions are integers
// incremented on every write; writes go through the single-connection
// write pool inside an immediate transaction.
type BlobRepo struct {
	write *sql.DB
	read  *sql.DB
}

// NewBlobRepo creates a BlobRepo. read may equal write.
func NewBlobRepo(write, read *sql.DB) *BlobRepo {
	if read == nil {
		read = write
	}
	return &BlobRepo{write: write, read: read}
}

// Get returns the document stored under key.
func (r *BlobRepo) Get(ctx context.Context, key string) (*domain.Blob, error) {
	var (
		payload   []byte
		version   int64
		updatedAt string
	)
	err := r.read.QueryRowContext(ctx,
		`SELECT payload, version, updated_at FROM blobs WHERE key = ?`, key,
	).Scan(&payload, &version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("blob %q not found", key)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return &domain.Blob{
		Key:       key,
		Data:      payload,
		Version:   strconv.FormatInt(version, 10),
		UpdatedAt: parseTime(updatedAt),
	}, nil
}

// Put writes data under key. A non-empty ifVersion must match the stored
// version.
func (r *BlobRepo) Put(ctx context.Context, key string, data []byte, ifVersion string) (_ *domain.Blob, err error) {
	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM blobs WHERE key = ?`, key).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return nil, mapDBError(err)
	}

	if ifVersion != "" {
		actual := ""
		if current > 0 {
			actual = strconv.FormatInt(current, 10)
		}
		if actual != ifVersion {
			return nil, &domain.VersionConflictError{Key: key, Expected: ifVersion, Actual: actual}
		}
	}

	next := current + 1
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO blobs (key, payload, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, key, data, next, formatTime(now))
	if err != nil {
		return nil, mapDBError(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &domain.Blob{Key: key, Data: data, Version: strconv.FormatInt(next, 10), UpdatedAt: now}, nil
}

// Delete removes key. A missing key is a NotFoundError.
func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	res, err := r.write.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("blob %q not found", key)
	}
	return nil
}

// List returns the keys starting with prefix, sorted.
func (r *BlobRepo) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT key FROM blobs WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
