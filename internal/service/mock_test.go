package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"sheetmap/internal/db"
	"sheetmap/internal/db/repository"
	"sheetmap/internal/domain"
)

// === Blob Repository Mock ===

type mockBlobRepo struct {
	getFn    func(ctx context.Context, key string) (*domain.Blob, error)
	putFn    func(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error)
	deleteFn func(ctx context.Context, key string) error
	listFn   func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockBlobRepo) Get(ctx context.Context, key string) (*domain.Blob, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	panic("unexpected call to mockBlobRepo.Get")
}

func (m *mockBlobRepo) Put(ctx context.Context, key string, data []byte, ifVersion string) (*domain.Blob, error) {
	if m.putFn != nil {
		return m.putFn(ctx, key, data, ifVersion)
	}
	panic("unexpected call to mockBlobRepo.Put")
}

func (m *mockBlobRepo) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	panic("unexpected call to mockBlobRepo.Delete")
}

func (m *mockBlobRepo) List(ctx context.Context, prefix string) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, prefix)
	}
	panic("unexpected call to mockBlobRepo.List")
}

// === Audit Repository Mock ===

type mockAuditRepo struct {
	entries   []*domain.AuditEntry
	insertErr error
}

func (m *mockAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	panic("unexpected call to mockAuditRepo.List")
}

func (m *mockAuditRepo) lastEntry() *domain.AuditEntry {
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

func (m *mockAuditRepo) hasAction(action string) bool {
	for _, e := range m.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

var _ domain.BlobRepository = (*mockBlobRepo)(nil)
var _ domain.AuditRepository = (*mockAuditRepo)(nil)

// === Test Helpers ===

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

func ctxWithPrincipal(name string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{Name: name})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// notFoundRepo answers every Get with NotFound and records the last Put.
func notFoundRepo(put *[]byte) *mockBlobRepo {
	return &mockBlobRepo{
		getFn: func(_ context.Context, key string) (*domain.Blob, error) {
			return nil, domain.ErrNotFound("blob %q not found", key)
		},
		putFn: func(_ context.Context, key string, data []byte, _ string) (*domain.Blob, error) {
			if put != nil {
				*put = data
			}
			return &domain.Blob{Key: key, Data: data, Version: "1"}, nil
		},
	}
}

// sqliteRepos returns blob and audit repositories over a fresh database.
func sqliteRepos(t *testing.T) (*repository.BlobRepo, *repository.AuditRepo) {
	t.Helper()
	pair := db.OpenTestSQLite(t)
	return repository.NewBlobRepo(pair.Write, pair.Read), repository.NewAuditRepo(pair.Write)
}
