// Package api serves the sheetmap persistence API over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetmap/internal/service"
)

// DefaultMaxUploadBytes bounds spreadsheet uploads when no limit is set.
const DefaultMaxUploadBytes = 32 << 20

// HealthFunc reports the storage schema version, or an error when the
// backing store is unreachable.
type HealthFunc func(ctx context.Context) (schemaVersion int64, err error)

// Handler holds the services behind the /api/v1 routes.
type Handler struct {
	datasets       *service.DatasetService
	mappings       *service.MappingService
	lookups        *service.LookupService
	defaultFields  *service.DefaultFieldsService
	rules          *service.RuleService
	audit          *service.AuditService
	health         HealthFunc
	maxUploadBytes int64
	logger         *slog.Logger
}

// Services groups the services a Handler needs.
type Services struct {
	Datasets      *service.DatasetService
	Mappings      *service.MappingService
	Lookups       *service.LookupService
	DefaultFields *service.DefaultFieldsService
	Rules         *service.RuleService
	Audit         *service.AuditService
}

// NewHandler creates a Handler. A zero maxUploadBytes selects
// DefaultMaxUploadBytes.
func NewHandler(svcs Services, health HealthFunc, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		datasets:       svcs.Datasets,
		mappings:       svcs.Mappings,
		lookups:        svcs.Lookups,
		defaultFields:  svcs.DefaultFields,
		rules:          svcs.Rules,
		audit:          svcs.Audit,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Routes registers the /api/v1 endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/datasets/{kind}", func(r chi.Router) {
		r.Get("/", h.getDataset)
		r.Put("/", h.putDataset)
		r.Post("/upload", h.uploadDataset)
	})

	r.Route("/default-fields", func(r chi.Router) {
		r.Get("/", h.getDefaultFields)
		r.Put("/", h.putDefaultFields)
		r.Post("/upload", h.uploadDefaultFields)
		r.Get("/values", h.defaultFieldValues)
		r.Get("/mappings", h.getFieldMappings)
		r.Put("/mappings", h.putFieldMappings)
		r.Get("/resolve", h.resolveField)
	})

	r.Get("/mappings", h.getMappings)
	r.Put("/mappings", h.putMappings)

	r.Route("/lookups", func(r chi.Router) {
		r.Get("/", h.listLookups)
		r.Put("/", h.replaceLookups)
		r.Patch("/", h.mergeLookups)
		r.Delete("/", h.deleteLookupByBody)
		r.Get("/{owner}", h.getLookup)
		r.Post("/{owner}", h.registerLookup)
		r.Delete("/{owner}", h.deleteLookup)
		r.Get("/{owner}/values", h.lookupValues)
	})

	r.Get("/rules/default", h.getDefaultRules)
	r.Get("/rules/user", h.getUserRules)
	r.Put("/rules/user", h.putUserRules)

	r.Get("/audit", h.listAudit)
}

// Healthz answers 200 with the schema version, or 503 when the store is
// unreachable.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	v, err := h.health(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": v})
}
