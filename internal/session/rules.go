package session

import (
	"context"
	"fmt"

	"sheetmap/internal/domain"
)

// Rules returns the default rules followed by the user-defined rules.
func (s *Session) Rules() []domain.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.rules.All()
}

// AddRule appends a user-defined rule and stores the whole user list. A
// save failure is returned; the local add is kept so SaveRules can retry.
func (s *Session) AddRule(ctx context.Context, rule domain.Rule) (domain.Rule, error) {
	s.mu.Lock()
	added, err := s.st.rules.Add(rule)
	s.mu.Unlock()
	if err != nil {
		return domain.Rule{}, err
	}
	return added, s.SaveRules(ctx)
}

// DeleteRule removes the first user-defined rule named name and stores the
// remaining list. It reports whether a rule was removed; removing an
// unknown name is a no-op and sends nothing.
func (s *Session) DeleteRule(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	removed := s.st.rules.Delete(name)
	s.mu.Unlock()
	if !removed {
		return false, nil
	}
	return true, s.SaveRules(ctx)
}

// SaveRules stores the user-defined rules.
func (s *Session) SaveRules(ctx context.Context) error {
	s.mu.Lock()
	rules := s.st.rules.UserDefined()
	version := s.st.versions[domain.KeyUserRules]
	s.mu.Unlock()

	newVersion, err := s.backend.SaveUserRules(ctx, rules, version)
	if err != nil {
		s.logger.ErrorContext(ctx, "saving user rules failed", "rules", len(rules), "error", err)
		return fmt.Errorf("save %s: %w", domain.KeyUserRules, err)
	}

	s.mu.Lock()
	s.st.versions[domain.KeyUserRules] = newVersion
	s.mu.Unlock()
	return nil
}
