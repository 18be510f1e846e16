package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetmap/internal/domain"
)

func (h *Handler) getDataset(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDatasetKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.datasets.Get(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) putDataset(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDatasetKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var ds domain.Dataset
	if err := decodeJSON(w, r, &ds); err != nil {
		h.writeError(w, r, err)
		return
	}
	if ds.Headers == nil {
		ds.Headers = []string{}
	}
	out, err := h.datasets.Save(r.Context(), kind, ds, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) uploadDataset(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDatasetKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	opts, err := uploadOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name, f, err := h.uploadedFile(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	out, err := h.datasets.Upload(r.Context(), kind, name, f, opts, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}
