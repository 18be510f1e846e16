package domain

import "strings"

// Rule is a named business-rule placeholder. Name is its identity.
type Rule struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"-"`
}

// Validate requires a name and description that are non-blank after trimming.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("rule name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrValidation("rule description is required")
	}
	return nil
}

// RuleRegistry holds the read-only default rules and the mutable
// user-defined rules.
type RuleRegistry struct {
	defaults []Rule
	user     []Rule
}

// ReplaceDefaults swaps in a new default list.
func (r *RuleRegistry) ReplaceDefaults(rules []Rule) {
	r.defaults = withDefault(rules, true)
}

// ReplaceUserDefined swaps in a new user-defined list.
func (r *RuleRegistry) ReplaceUserDefined(rules []Rule) {
	r.user = withDefault(rules, false)
}

func withDefault(rules []Rule, isDefault bool) []Rule {
	out := make([]Rule, len(rules))
	for i, rule := range rules {
		rule.IsDefault = isDefault
		out[i] = rule
	}
	return out
}

// Add appends a trimmed user-defined rule.
func (r *RuleRegistry) Add(rule Rule) (Rule, error) {
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	rule = Rule{Name: strings.TrimSpace(rule.Name), Description: strings.TrimSpace(rule.Description)}
	r.user = append(r.user, rule)
	return rule, nil
}

// Delete removes the first user-defined rule named name and reports whether
// one was removed. Default rules are never touched.
func (r *RuleRegistry) Delete(name string) bool {
	for i, rule := range r.user {
		if rule.Name == name {
			r.user = append(r.user[:i:i], r.user[i+1:]...)
			return true
		}
	}
	return false
}

// Defaults returns a copy of the default rules.
func (r *RuleRegistry) Defaults() []Rule { return append([]Rule{}, r.defaults...) }

// UserDefined returns a copy of the user-defined rules.
func (r *RuleRegistry) UserDefined() []Rule { return append([]Rule{}, r.user...) }

// All returns default rules followed by user-defined rules.
func (r *RuleRegistry) All() []Rule {
	out := make([]Rule, 0, len(r.defaults)+len(r.user))
	out = append(out, r.defaults...)
	return append(out, r.user...)
}
