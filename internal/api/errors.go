package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sheetmap/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var (
		notFound     *domain.NotFoundError
		accessDenied *domain.AccessDeniedError
		validation   *domain.ValidationError
		parse        *domain.ParseError
		invalidRow   *domain.InvalidRowFormatError
		conflict     *domain.ConflictError
		duplicate    *domain.DuplicateLookupError
		version      *domain.VersionConflictError
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validation), errors.As(err, &parse), errors.As(err, &invalidRow):
		return http.StatusBadRequest
	case errors.As(err, &conflict), errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &version):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the mapped status. Internal errors are logged and
// their text withheld from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}
