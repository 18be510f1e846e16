package api

import (
	"net/http"

	"sheetmap/internal/domain"
)

func (h *Handler) getDefaultFields(w http.ResponseWriter, r *http.Request) {
	out, err := h.defaultFields.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) putDefaultFields(w http.ResponseWriter, r *http.Request) {
	var blob domain.ColumnBlob
	if err := decodeJSON(w, r, &blob); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.defaultFields.Save(r.Context(), blob, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) uploadDefaultFields(w http.ResponseWriter, r *http.Request) {
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

	out, err := h.defaultFields.Upload(r.Context(), name, f, opts, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) defaultFieldValues(w http.ResponseWriter, r *http.Request) {
	header := r.URL.Query().Get("header")
	if header == "" {
		h.writeError(w, r, domain.ErrValidation("query parameter header is required"))
		return
	}
	vals, err := h.defaultFields.Values(r.Context(), header, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

func (h *Handler) getFieldMappings(w http.ResponseWriter, r *http.Request) {
	out, err := h.defaultFields.Mappings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) putFieldMappings(w http.ResponseWriter, r *http.Request) {
	var values []domain.FieldValue
	if err := decodeJSON(w, r, &values); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.defaultFields.SaveMappings(r.Context(), values, ifMatch(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, out.Version)
	writeJSON(w, http.StatusOK, out.Value)
}

func (h *Handler) resolveField(w http.ResponseWriter, r *http.Request) {
	header := r.URL.Query().Get("header")
	if header == "" {
		h.writeError(w, r, domain.ErrValidation("query parameter header is required"))
		return
	}
	res, err := h.defaultFields.Resolve(r.Context(), header)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
