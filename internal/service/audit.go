package service

import (
	"context"
	"log/slog"

	"sheetmap/internal/domain"
)

// AuditService lists recorded mutations.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates an AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns one page of audit entries and the total count.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.repo.List(ctx, filter)
}

// auditor records mutations. A failed audit insert is logged and never
// fails the mutation it describes.
type auditor struct {
	repo   domain.AuditRepository
	logger *slog.Logger
}

func (a auditor) logAudit(ctx context.Context, action, key, detail string, opErr error) {
	if a.repo == nil {
		return
	}
	status := domain.AuditOK
	if opErr != nil {
		status = domain.AuditFailed
		detail = detail + ": " + opErr.Error()
	}
	err := a.repo.Insert(ctx, &domain.AuditEntry{
		Principal: domain.PrincipalName(ctx),
		Action:    action,
		Key:       key,
		Detail:    detail,
		Status:    status,
	})
	if err != nil && a.logger != nil {
		a.logger.WarnContext(ctx, "audit insert failed", "action", action, "key", key, "error", err)
	}
}
