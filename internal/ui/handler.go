// Package ui renders HTML views of the stored datasets, lookup tables,
// mappings and rules, with forms for editing mappings and user rules.
package ui

import (
	"context"
	"errors"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"sheetmap/internal/domain"
	"sheetmap/internal/service"
)

// Handler serves the /ui pages.
type Handler struct {
	Datasets *service.DatasetService
	Mappings *service.MappingService
	Lookups  *service.LookupService
	Rules    *service.RuleService

	Production  bool // marks cookies Secure
	AuthEnabled bool // send browsers without a token cookie to /ui/login
}

// NewHandler creates a Handler.
func NewHandler(datasets *service.DatasetService, mappings *service.MappingService, lookups *service.LookupService, rules *service.RuleService) *Handler {
	return &Handler{Datasets: datasets, Mappings: mappings, Lookups: lookups, Rules: rules}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func principalFromContext(ctx context.Context) domain.ContextPrincipal {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{Name: "anonymous"}
	}
	return p
}

func (h *Handler) renderServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var parse *domain.ParseError
	var stale *domain.VersionConflictError
	switch {
	case errors.As(err, &stale):
		status, title, message = http.StatusConflict, "Edited Elsewhere", "The document changed since this page was loaded. Reload and try again."
	case errors.As(err, &notFound):
		status, title, message = http.StatusNotFound, "Not Found", notFound.Error()
	case errors.As(err, &validation):
		status, title, message = http.StatusBadRequest, "Invalid Request", validation.Error()
	case errors.As(err, &parse):
		status, title, message = http.StatusInternalServerError, "Unreadable Document", parse.Error()
	}
	renderHTML(w, status, errorPage(title, message))
}
