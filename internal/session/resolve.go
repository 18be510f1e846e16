package session

import (
	"context"
	"fmt"

	"sheetmap/internal/domain"
)

// Candidates returns the filtered value list offered for header, and where
// it came from. Unknown headers are logged and yield an empty list.
func (s *Session) Candidates(ctx context.Context, header, fragment string) ([]string, domain.Source) {
	s.mu.Lock()
	r := domain.Resolver{
		Input:   s.st.input,
		Mapping: s.st.mapping,
		Lookups: s.st.lookups,
		Fields:  s.st.fields,
	}
	vals, src, w := r.Candidates(header, fragment)
	s.mu.Unlock()

	s.warn(ctx, w)
	return vals, src
}

// FieldValues returns every default field value whose header matches
// selected, in stored order.
func (s *Session) FieldValues(selected string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.MatchFieldValues(selected, s.st.fieldValues)
}

// Prefill returns the default value for header, or "" with a logged
// warning when nothing matches.
func (s *Session) Prefill(ctx context.Context, header string) string {
	s.mu.Lock()
	v, w := domain.ResolveFieldValue(header, s.st.fieldValues)
	s.mu.Unlock()
	s.warn(ctx, w)
	return v
}

// SetFieldValue replaces the default value stored under header, appending
// a new pair when none exists. Call SaveFieldValues to persist.
func (s *Session) SetFieldValue(header string, value any) error {
	if header == "" {
		return domain.ErrValidation("field header is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.fieldValues {
		if s.st.fieldValues[i].Header == header {
			s.st.fieldValues[i].Value = value
			return nil
		}
	}
	s.st.fieldValues = append(s.st.fieldValues, domain.FieldValue{Header: header, Value: value})
	return nil
}

// SaveFieldValues stores the default field value pairs.
func (s *Session) SaveFieldValues(ctx context.Context) error {
	s.mu.Lock()
	values := append([]domain.FieldValue{}, s.st.fieldValues...)
	version := s.st.versions[domain.KeyDefaultFieldValues]
	s.mu.Unlock()

	newVersion, err := s.backend.SaveFieldMappings(ctx, values, version)
	if err != nil {
		return fmt.Errorf("save %s: %w", domain.KeyDefaultFieldValues, err)
	}
	s.mu.Lock()
	s.st.versions[domain.KeyDefaultFieldValues] = newVersion
	s.mu.Unlock()
	return nil
}
