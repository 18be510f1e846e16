// Package pgstore implements domain.BlobRepository on PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"sheetmap/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var _ domain.BlobRepository = (*BlobRepo)(nil)

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return db, nil
}

type blobRow struct {
	Key       string    `db:"key"`
	Payload   []byte    `db:"payload"`
	Version   int64     `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r blobRow) toDomain() *domain.Blob {
	return &domain.Blob{
		Key:       r.Key,
		Data:      r.Payload,
		Version:   strconv.FormatInt(r.Version, 10),
		UpdatedAt: r.UpdatedAt,
	}
}

// BlobRepo stores blobs in the blobs table. Conditional writes are a
// single UPDATE guarded by the expected version.
type BlobRepo struct {
	db *sqlx.DB
}

// NewBlobRepo creates a BlobRepo.
func NewBlobRepo(db *sqlx.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

// Get returns the document stored under key.
func (r *BlobRepo) Get(ctx context.Context, key string) (*domain.Blob, error) {
	var row blobRow
	err := r.db.GetContext(ctx, &row, `SELECT key, payload, version, updated_at FROM blobs WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("blob %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	return row.toDomain(), nil
}

// Put writes data under key. A non-empty ifVersion must match the stored
// version.
func (r *BlobRepo) Put(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error) {
	var row blobRow
	var err error
	if ifVersion == "" {
		err = r.db.GetContext(ctx, &row, `
			INSERT INTO blobs (key, payload, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (key) DO UPDATE SET
				payload = EXCLUDED.payload,
				version = blobs.version + 1,
				updated_at = now()
			RETURNING key, payload, version, updated_at`, key, string(data))
	} else {
		expected, perr := strconv.ParseInt(ifVersion, 10, 64)
		if perr != nil {
			return nil, &domain.VersionConflictError{Key: key, Expected: ifVersion}
		}
		err = r.db.GetContext(ctx, &row, `
			UPDATE blobs SET payload = $2, version = version + 1, updated_at = now()
			WHERE key = $1 AND version = $3
			RETURNING key, payload, version, updated_at`, key, string(data), expected)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.conflict(ctx, key, ifVersion)
		}
	}
	if err != nil {
		return nil, mapPQError(key, err)
	}
	return row.toDomain(), nil
}

func (r *BlobRepo) conflict(ctx context.Context, key, expected string) error {
	vc := &domain.VersionConflictError{Key: key, Expected: expected}
	var current int64
	if err := r.db.GetContext(ctx, &current, `SELECT version FROM blobs WHERE key = $1`, key); err == nil {
		vc.Actual = strconv.FormatInt(current, 10)
	}
	return vc
}

// Delete removes key.
func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = $1`, key)
	if err != nil {
		return mapPQError(key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("blob %q not found", key)
	}
	return nil
}

// List returns the keys starting with prefix, sorted.
func (r *BlobRepo) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := r.db.SelectContext(ctx, &keys,
		`SELECT key FROM blobs WHERE key LIKE $1 ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return keys, nil
}

func likePrefix(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}

func mapPQError(key string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return domain.ErrConflict("blob %q already exists", key)
		case "invalid_text_representation", "invalid_json_text":
			return domain.ErrValidation("blob %q: %s", key, pqErr.Message)
		}
	}
	return fmt.Errorf("blob %q: %w", key, err)
}
