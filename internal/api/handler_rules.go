package api

import (
	"net/http"

	"sheetmap/internal/domain"
)

func (h *Handler) getDefaultRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.Defaults(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) getUserRules(w http.ResponseWriter, r *http.Request) {
	out, err := h.rules.User(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) putUserRules(w http.ResponseWriter, r *http.Request) {
	var rules []domain.Rule
	if err := decodeJSON(w, r, &rules); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.rules.SaveUser(r.Context(), rules, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}
