package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"sheetmap/internal/domain"
)

var _ domain.AuditRepository = (*AuditRepo)(nil)

// AuditRepo stores audit entries in SQLite.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates an AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends e, assigning an ID and timestamp when unset.
func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, principal, action, blob_key, detail, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Principal, e.Action, e.Key, e.Detail, e.Status, formatTime(e.CreatedAt))
	return mapDBError(err)
}

// List returns one page of entries matching filter, newest first, and the
// total match count.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.Action != nil {
		where = append(where, "action = ?")
		args = append(args, *filter.Action)
	}
	if filter.Key != nil {
		where = append(where, "blob_key = ?")
		args = append(args, *filter.Key)
	}
	if filter.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM audit_log`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	pageArgs := append(append([]any{}, args...), filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, principal, action, blob_key, detail, status, created_at
		FROM audit_log`+clause+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e       domain.AuditEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Principal, &e.Action, &e.Key, &e.Detail, &e.Status, &created); err != nil {
			return nil, 0, err
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
