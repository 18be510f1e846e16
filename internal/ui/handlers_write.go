package ui

import (
	"net/http"
	"strings"

	"sheetmap/internal/domain"
)

func formString(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostForm.Get(key))
}

// SetMapping upserts one mapping from the mappings page form.
func (h *Handler) SetMapping(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, domain.ErrValidation("invalid form: %v", err))
		return
	}
	entry := domain.MappingEntry{
		InputHeader:  formString(r, "input_header"),
		OutputHeader: formString(r, "output_header"),
	}
	if _, err := h.Mappings.Set(r.Context(), entry); err != nil {
		h.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/ui/mappings", http.StatusSeeOther)
}

// AddRule appends a user-defined rule from the rules page form.
func (h *Handler) AddRule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, domain.ErrValidation("invalid form: %v", err))
		return
	}
	rule := domain.Rule{Name: formString(r, "name"), Description: formString(r, "description")}
	h.editUserRules(w, r, func(reg *domain.RuleRegistry) error {
		_, err := reg.Add(rule)
		return err
	})
}

// DeleteRule removes the first user-defined rule with the submitted name.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, domain.ErrValidation("invalid form: %v", err))
		return
	}
	name := formString(r, "name")
	h.editUserRules(w, r, func(reg *domain.RuleRegistry) error {
		if !reg.Delete(name) {
			return domain.ErrNotFound("no user-defined rule named %q", name)
		}
		return nil
	})
}

// editUserRules applies edit to the stored user rules and saves them at
// the version read.
func (h *Handler) editUserRules(w http.ResponseWriter, r *http.Request, edit func(*domain.RuleRegistry) error) {
	cur, err := h.Rules.User(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	var reg domain.RuleRegistry
	reg.ReplaceUserDefined(cur.Value)
	if err := edit(&reg); err != nil {
		h.renderServiceError(w, err)
		return
	}
	if _, err := h.Rules.SaveUser(r.Context(), reg.UserDefined(), cur.Version); err != nil {
		h.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/ui/rules", http.StatusSeeOther)
}
