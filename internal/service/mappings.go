package service

import (
	"context"
	"fmt"
	"log/slog"

	"sheetmap/internal/domain"
)

// MappingService stores the header mapping table.
type MappingService struct {
	repo     domain.BlobRepository
	attempts int
	auditor
}

// NewMappingService creates a MappingService. attempts bounds the
// compare-and-swap retries of Set.
func NewMappingService(repo domain.BlobRepository, audit domain.AuditRepository, logger *slog.Logger, attempts int) *MappingService {
	return &MappingService{repo: repo, attempts: attempts, auditor: auditor{repo: audit, logger: logger}}
}

// Get returns the stored mapping list.
func (s *MappingService) Get(ctx context.Context) (Versioned[[]domain.MappingEntry], error) {
	return mappingsDoc.get(ctx, s.repo)
}

// Save replaces the mapping list. Entries repeating an input header
// collapse into one, keeping the first position and the last output.
func (s *MappingService) Save(ctx context.Context, entries []domain.MappingEntry, ifVersion string) (Versioned[[]domain.MappingEntry], error) {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return Versioned[[]domain.MappingEntry]{}, domain.ErrValidation("mapping %d: %s", i, err.Error())
		}
	}
	list := domain.NewMappingTable(entries).List()
	out, err := mappingsDoc.put(ctx, s.repo, list, ifVersion)
	s.logAudit(ctx, "SAVE_MAPPINGS", domain.KeyMappings, fmt.Sprintf("saved %d mappings", len(list)), err)
	return out, err
}

// Set upserts one mapping on the stored list.
func (s *MappingService) Set(ctx context.Context, entry domain.MappingEntry) (Versioned[[]domain.MappingEntry], error) {
	if err := entry.Validate(); err != nil {
		return Versioned[[]domain.MappingEntry]{}, err
	}
	out, err := mappingsDoc.update(ctx, s.repo, s.attempts, func(list *[]domain.MappingEntry) error {
		t := domain.NewMappingTable(*list)
		t.Set(entry.InputHeader, entry.OutputHeader)
		*list = t.List()
		return nil
	})
	s.logAudit(ctx, "SET_MAPPING", domain.KeyMappings,
		fmt.Sprintf("mapped %q to %q", entry.InputHeader, entry.OutputHeader), err)
	return out, err
}
