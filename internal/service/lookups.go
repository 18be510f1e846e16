package service

import (
	"context"
	"fmt"
	"log/slog"

	"sheetmap/internal/domain"
)

// LookupService stores the lookup registry, the tables attached to output
// headers.
type LookupService struct {
	repo     domain.BlobRepository
	attempts int
	auditor
}

// NewLookupService creates a LookupService.
func NewLookupService(repo domain.BlobRepository, audit domain.AuditRepository, logger *slog.Logger, attempts int) *LookupService {
	return &LookupService{repo: repo, attempts: attempts, auditor: auditor{repo: audit, logger: logger}}
}

// List returns the whole registry.
func (s *LookupService) List(ctx context.Context) (Versioned[*domain.LookupRegistry], error) {
	return lookupsDoc.get(ctx, s.repo)
}

// Get returns the table attached to owner.
func (s *LookupService) Get(ctx context.Context, owner string) (domain.LookupTable, error) {
	reg, err := lookupsDoc.get(ctx, s.repo)
	if err != nil {
		return domain.LookupTable{}, err
	}
	t, ok := reg.Value.Get(owner)
	if !ok {
		return domain.LookupTable{}, domain.ErrNotFound("no lookup table for header %q", owner)
	}
	return t, nil
}

// Display returns the display projection of owner's table: blank rows and
// all-blank columns removed.
func (s *LookupService) Display(ctx context.Context, owner string) (domain.LookupTable, error) {
	t, err := s.Get(ctx, owner)
	if err != nil {
		return domain.LookupTable{}, err
	}
	return t.NonEmpty(), nil
}

// Values returns the filtered candidate values of one column of owner's
// table. An empty column selects the table's candidate column.
func (s *LookupService) Values(ctx context.Context, owner, column, fragment string) ([]string, error) {
	t, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if column == "" {
		c, ok := t.CandidateColumn(owner)
		if !ok {
			return []string{}, nil
		}
		column = c
	}
	return domain.FilterValues(t.Values(column), fragment), nil
}

// Register attaches a new table to owner. It fails with
// *domain.DuplicateLookupError if owner already has one.
func (s *LookupService) Register(ctx context.Context, owner string, table domain.LookupTable) (Versioned[*domain.LookupRegistry], error) {
	out, err := lookupsDoc.update(ctx, s.repo, s.attempts, func(reg **domain.LookupRegistry) error {
		return (*reg).Register(owner, table)
	})
	s.logAudit(ctx, "REGISTER_LOOKUP", domain.KeyLookups,
		fmt.Sprintf("registered lookup table for %q with %d rows", owner, len(table.Rows)), err)
	return out, err
}

// Merge overlays tables onto the stored registry, replacing owners present
// in both.
func (s *LookupService) Merge(ctx context.Context, tables *domain.LookupRegistry) (Versioned[*domain.LookupRegistry], error) {
	out, err := lookupsDoc.update(ctx, s.repo, s.attempts, func(reg **domain.LookupRegistry) error {
		(*reg).Merge(tables)
		return nil
	})
	s.logAudit(ctx, "MERGE_LOOKUPS", domain.KeyLookups, fmt.Sprintf("merged %d lookup tables", tables.Len()), err)
	return out, err
}

// Replace overwrites the whole registry.
func (s *LookupService) Replace(ctx context.Context, reg *domain.LookupRegistry, ifVersion string) (Versioned[*domain.LookupRegistry], error) {
	for _, o := range reg.Owners() {
		if o == "" {
			return Versioned[*domain.LookupRegistry]{}, domain.ErrValidation("owner header is required")
		}
	}
	out, err := lookupsDoc.put(ctx, s.repo, reg, ifVersion)
	s.logAudit(ctx, "REPLACE_LOOKUPS", domain.KeyLookups, fmt.Sprintf("replaced registry with %d lookup tables", reg.Len()), err)
	return out, err
}

// Delete detaches owner's table.
func (s *LookupService) Delete(ctx context.Context, owner string) (Versioned[*domain.LookupRegistry], error) {
	out, err := lookupsDoc.update(ctx, s.repo, s.attempts, func(reg **domain.LookupRegistry) error {
		if !(*reg).Remove(owner) {
			return domain.ErrNotFound("no lookup table for header %q", owner)
		}
		return nil
	})
	s.logAudit(ctx, "DELETE_LOOKUP", domain.KeyLookups, fmt.Sprintf("deleted lookup table for %q", owner), err)
	return out, err
}
