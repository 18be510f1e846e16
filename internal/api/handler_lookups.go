package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"sheetmap/internal/domain"
)

func (h *Handler) listLookups(w http.ResponseWriter, r *http.Request) {
	out, err := h.lookups.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) replaceLookups(w http.ResponseWriter, r *http.Request) {
	reg := &domain.LookupRegistry{}
	if err := decodeJSON(w, r, reg); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.lookups.Replace(r.Context(), reg, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

// mergeLookups overlays the body's tables onto the stored registry. The
// merge runs server-side so concurrent clients do not lose each other's
// tables.
func (h *Handler) mergeLookups(w http.ResponseWriter, r *http.Request) {
	reg := &domain.LookupRegistry{}
	if err := decodeJSON(w, r, reg); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.lookups.Merge(r.Context(), reg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

type deleteLookupRequest struct {
	Key string `json:"key"`
}

func (h *Handler) deleteLookupByBody(w http.ResponseWriter, r *http.Request) {
	var req deleteLookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Key == "" {
		h.writeError(w, r, domain.ErrValidation("key is required"))
		return
	}
	h.removeLookup(w, r, req.Key)
}

func (h *Handler) deleteLookup(w http.ResponseWriter, r *http.Request) {
	h.removeLookup(w, r, ownerParam(r))
}

func (h *Handler) removeLookup(w http.ResponseWriter, r *http.Request, owner string) {
	out, err := h.lookups.Delete(r.Context(), owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) getLookup(w http.ResponseWriter, r *http.Request) {
	owner := ownerParam(r)
	var (
		t   domain.LookupTable
		err error
	)
	if display, _ := boolParam(r.URL.Query().Get("non_empty")); display {
		t, err = h.lookups.Display(r.Context(), owner)
	} else {
		t, err = h.lookups.Get(r.Context(), owner)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) registerLookup(w http.ResponseWriter, r *http.Request) {
	var t domain.LookupTable
	if err := decodeJSON(w, r, &t); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.lookups.Register(r.Context(), ownerParam(r), t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusCreated, out.Value)
}

func (h *Handler) lookupValues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vals, err := h.lookups.Values(r.Context(), ownerParam(r), q.Get("column"), q.Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

// ownerParam returns the unescaped {owner} segment. chi routes on the raw
// path when a header contains an escaped slash.
func ownerParam(r *http.Request) string {
	raw := chi.URLParam(r, "owner")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
