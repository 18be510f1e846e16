package api

import (
	"net/http"

	"sheetmap/internal/domain"
)

// AuditPage is one page of the audit log.
type AuditPage struct {
	Entries       []domain.AuditEntry `json:"entries"`
	Total         int64               `json:"total"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	since, err := optionalTime(r, "since")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := domain.AuditFilter{
		Action: optionalString(r, "action"),
		Key:    optionalString(r, "key"),
		Since:  since,
		Page:   page,
	}
	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, AuditPage{
		Entries:       entries,
		Total:         total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}
