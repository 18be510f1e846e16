package api

import (
	"net/http"

	"sheetmap/internal/domain"
)

func (h *Handler) getMappings(w http.ResponseWriter, r *http.Request) {
	out, err := h.mappings.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) putMappings(w http.ResponseWriter, r *http.Request) {
	var entries []domain.MappingEntry
	if err := decodeJSON(w, r, &entries); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.mappings.Save(r.Context(), entries, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}
