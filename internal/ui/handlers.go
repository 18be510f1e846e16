package ui

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"sheetmap/internal/domain"
)

func lookupHref(owner string) string {
	return "/ui/lookups/" + url.PathEscape(owner)
}

// Home shows counts for every stored document.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, err := h.Datasets.Get(ctx, domain.DatasetInput)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	out, err := h.Datasets.Get(ctx, domain.DatasetOutput)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	maps, err := h.Mappings.Get(ctx)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	reg, err := h.Lookups.List(ctx)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, overviewPage(principalFromContext(ctx), overviewData{
		InputRows:     len(in.Value.Rows),
		InputHeaders:  len(in.Value.Headers),
		OutputRows:    len(out.Value.Rows),
		OutputHeaders: len(out.Value.Headers),
		Mappings:      len(maps.Value),
		Lookups:       reg.Value.Owners(),
	}))
}

// Dataset renders one dataset as a table.
func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDatasetKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	ds, err := h.Datasets.Get(r.Context(), kind)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, datasetPage(principalFromContext(r.Context()), kind, ds.Value, r.URL.Query().Get("q")))
}

// MappingList renders the mapping table.
func (h *Handler) MappingList(w http.ResponseWriter, r *http.Request) {
	maps, err := h.Mappings.Get(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, mappingsPage(principalFromContext(r.Context()), maps.Value, csrfField(r)))
}

// LookupList renders the registered owners.
func (h *Handler) LookupList(w http.ResponseWriter, r *http.Request) {
	reg, err := h.Lookups.List(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, lookupsPage(principalFromContext(r.Context()), reg.Value))
}

// LookupDetail renders one lookup table's display projection.
func (h *Handler) LookupDetail(w http.ResponseWriter, r *http.Request) {
	owner, err := url.PathUnescape(chi.URLParam(r, "owner"))
	if err != nil {
		h.renderServiceError(w, domain.ErrValidation("bad owner header: %v", err))
		return
	}
	t, err := h.Lookups.Display(r.Context(), owner)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, lookupPage(principalFromContext(r.Context()), owner, t, r.URL.Query().Get("q")))
}

// RuleList renders default and user-defined rules.
func (h *Handler) RuleList(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.Rules.Defaults(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	user, err := h.Rules.User(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, rulesPage(principalFromContext(r.Context()), defaults, user.Value, csrfField(r)))
}
