package session

import (
	"context"
	"fmt"

	"sheetmap/internal/domain"
)

// RegisterLookup attaches a lookup table to owner. Duplicate owners and
// malformed rows are rejected locally before any request is sent. On
// success the local registry is replaced with the server's copy.
func (s *Session) RegisterLookup(ctx context.Context, owner string, headers []string, rows []any) error {
	s.mu.Lock()
	staged := s.st.lookups.Clone()
	s.mu.Unlock()

	if err := staged.RegisterRows(owner, headers, rows); err != nil {
		return err
	}
	table, _ := staged.Get(owner)

	reg, version, err := s.backend.RegisterLookup(ctx, owner, table)
	if err != nil {
		return fmt.Errorf("register lookup %q: %w", owner, err)
	}
	s.replaceLookups(reg, version)
	s.logger.InfoContext(ctx, "lookup registered", "owner", owner, "rows", len(table.Rows))
	return nil
}

// RemoveLookup detaches owner's table on the server and resynchronizes the
// local registry.
func (s *Session) RemoveLookup(ctx context.Context, owner string) error {
	reg, version, err := s.backend.DeleteLookup(ctx, owner)
	if err != nil {
		return fmt.Errorf("delete lookup %q: %w", owner, err)
	}
	s.replaceLookups(reg, version)
	return nil
}

func (s *Session) replaceLookups(reg *domain.LookupRegistry, version string) {
	if reg == nil {
		reg = &domain.LookupRegistry{}
	}
	s.mu.Lock()
	s.st.lookups = reg
	s.st.versions[domain.KeyLookups] = version
	s.mu.Unlock()
}

// Lookup returns the table attached to owner.
func (s *Session) Lookup(owner string) (domain.LookupTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.lookups.Get(owner)
}

// LookupOwners returns the owner headers in registration order.
func (s *Session) LookupOwners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.lookups.Owners()
}
