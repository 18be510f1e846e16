package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"sheetmap/internal/domain"
)

//go:embed default_rules.yaml
var builtinRules []byte

// rulesFile is the YAML layout of a default-rules file.
type rulesFile struct {
	Rules []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"rules"`
}

// ParseRulesYAML decodes a default-rules file. Every rule must carry a name
// and a description.
func ParseRulesYAML(data []byte) ([]domain.Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &domain.ParseError{Source: "rules file", Err: err}
	}
	out := make([]domain.Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		rule := domain.Rule{Name: r.Name, Description: r.Description, IsDefault: true}
		if err := rule.Validate(); err != nil {
			return nil, &domain.ParseError{Source: "rules file", Err: fmt.Errorf("rule %d: %w", i, err)}
		}
		out = append(out, rule)
	}
	return out, nil
}

// RuleService serves the read-only default rules and stores the
// user-defined rules.
type RuleService struct {
	repo     domain.BlobRepository
	fallback []domain.Rule
	auditor
}

// NewRuleService creates a RuleService. Default rules come from the stored
// rules/default document when present, otherwise from the YAML file at
// rulesPath, otherwise from the built-in list.
func NewRuleService(repo domain.BlobRepository, audit domain.AuditRepository, logger *slog.Logger, rulesPath string) (*RuleService, error) {
	data := builtinRules
	if rulesPath != "" {
		b, err := os.ReadFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("read default rules: %w", err)
		}
		data = b
	}
	rules, err := ParseRulesYAML(data)
	if err != nil {
		return nil, err
	}
	return &RuleService{repo: repo, fallback: rules, auditor: auditor{repo: audit, logger: logger}}, nil
}

// Defaults returns the default rules.
func (s *RuleService) Defaults(ctx context.Context) ([]domain.Rule, error) {
	b, err := s.repo.Get(ctx, domain.KeyDefaultRules)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return append([]domain.Rule{}, s.fallback...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", domain.KeyDefaultRules, err)
	}
	var rules []domain.Rule
	if err := json.Unmarshal(b.Data, &rules); err != nil {
		return nil, &domain.ParseError{Source: domain.KeyDefaultRules, Err: err}
	}
	for i := range rules {
		rules[i].IsDefault = true
	}
	return rules, nil
}

// User returns the user-defined rules.
func (s *RuleService) User(ctx context.Context) (Versioned[[]domain.Rule], error) {
	return userRulesDoc.get(ctx, s.repo)
}

// SaveUser replaces the user-defined rules. Each rule is validated and
// trimmed.
func (s *RuleService) SaveUser(ctx context.Context, rules []domain.Rule, ifVersion string) (Versioned[[]domain.Rule], error) {
	var reg domain.RuleRegistry
	for i, r := range rules {
		if _, err := reg.Add(r); err != nil {
			return Versioned[[]domain.Rule]{}, domain.ErrValidation("rule %d: %s", i, err.Error())
		}
	}
	list := reg.UserDefined()
	out, err := userRulesDoc.put(ctx, s.repo, list, ifVersion)
	s.logAudit(ctx, "SAVE_USER_RULES", domain.KeyUserRules, fmt.Sprintf("saved %d user-defined rules", len(list)), err)
	return out, err
}

// SeedDefaults stores the file or built-in default rules under rules/default
// when no stored list exists yet, and reports whether it wrote one. A stored
// list is never overwritten.
func (s *RuleService) SeedDefaults(ctx context.Context) (bool, error) {
	_, err := s.repo.Get(ctx, domain.KeyDefaultRules)
	if err == nil {
		return false, nil
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return false, fmt.Errorf("load %s: %w", domain.KeyDefaultRules, err)
	}
	data, err := json.Marshal(s.fallback)
	if err != nil {
		return false, fmt.Errorf("encode default rules: %w", err)
	}
	_, err = s.repo.Put(ctx, domain.KeyDefaultRules, data, "")
	s.logAudit(ctx, "SEED_DEFAULT_RULES", domain.KeyDefaultRules, fmt.Sprintf("seeded %d default rules", len(s.fallback)), err)
	if err != nil {
		return false, err
	}
	return true, nil
}
