package session

import (
	"context"
	"fmt"
	"slices"

	"sheetmap/internal/domain"
)

// SetMapping upserts a mapping by input header. Header existence is not
// checked until SaveMappings.
func (s *Session) SetMapping(input, output string) error {
	e := domain.MappingEntry{InputHeader: input, OutputHeader: output}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.st.mapping.Set(input, output)
	s.mu.Unlock()
	return nil
}

// Mappings returns the mapping entries in order.
func (s *Session) Mappings() []domain.MappingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.mapping.List()
}

// ClearMappings empties the local mapping table.
func (s *Session) ClearMappings() {
	s.mu.Lock()
	s.st.mapping.Clear()
	s.mu.Unlock()
}

// SaveMappings drops entries whose headers are missing from the current
// datasets, logs each dropped entry, and stores the rest. It returns the
// dropped entries.
func (s *Session) SaveMappings(ctx context.Context) ([]domain.MappingEntry, error) {
	s.mu.Lock()
	before := s.st.mapping.List()
	table := domain.NewMappingTable(before)
	dropped := table.Prune(s.st.input.Headers, s.st.output.Headers)
	version := s.st.versions[domain.KeyMappings]
	s.mu.Unlock()

	for _, e := range dropped {
		s.logger.WarnContext(ctx, "dropping stale mapping",
			"input_header", e.InputHeader, "output_header", e.OutputHeader)
	}

	newVersion, err := s.backend.SaveMappings(ctx, table.List(), version)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", domain.KeyMappings, err)
	}

	s.mu.Lock()
	if slices.Equal(s.st.mapping.List(), before) {
		s.st.mapping = table
	} else {
		// Edited while the save was in flight: keep the edits and remove
		// only the entries this save dropped.
		s.st.mapping = withoutEntries(s.st.mapping.List(), dropped)
	}
	s.st.versions[domain.KeyMappings] = newVersion
	s.mu.Unlock()
	return dropped, nil
}

func withoutEntries(entries, drop []domain.MappingEntry) *domain.MappingTable {
	kept := make([]domain.MappingEntry, 0, len(entries))
	for _, e := range entries {
		if !slices.Contains(drop, e) {
			kept = append(kept, e)
		}
	}
	return domain.NewMappingTable(kept)
}
