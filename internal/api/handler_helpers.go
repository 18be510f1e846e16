package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

// maxJSONBody bounds JSON request bodies; uploads have their own limit.
const maxJSONBody = 16 << 20

// decodeJSON reads the request body into v. Malformed JSON is a
// ParseError so it maps to 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is required")
		}
		// Typed decoders already return domain errors.
		if httpStatusFromDomainError(err) != http.StatusInternalServerError {
			return err
		}
		return &domain.ParseError{Source: "request body", Err: err}
	}
	return nil
}

// ifMatch returns the version a write is conditional on, or "" for an
// unconditional write. "*" is treated as unconditional.
func ifMatch(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	if v == "*" {
		return ""
	}
	return strings.Trim(v, `"`)
}

// setETag publishes the document version. Unwritten documents carry none.
func setETag(w http.ResponseWriter, version string) {
	if version != "" {
		w.Header().Set("ETag", strconv.Quote(version))
	}
}

// uploadOptions reads decoder options from the query string.
func uploadOptions(r *http.Request) (sheet.Options, error) {
	q := r.URL.Query()
	opts := sheet.Options{Sheet: q.Get("sheet")}
	var err error
	if opts.EuropeanNumbers, err = boolParam(q.Get("eu_numbers")); err != nil {
		return opts, domain.ErrValidation("eu_numbers: %s", err.Error())
	}
	if opts.KeepText, err = boolParam(q.Get("keep_text")); err != nil {
		return opts, domain.ErrValidation("keep_text: %s", err.Error())
	}
	if d := q.Get("delimiter"); d != "" {
		runes := []rune(d)
		if len(runes) != 1 {
			return opts, domain.ErrValidation("delimiter must be a single character")
		}
		opts.Comma = runes[0]
	}
	return opts, nil
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// uploadedFile returns the "file" part of a multipart upload, bounded by
// the configured upload limit.
func (h *Handler) uploadedFile(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, domain.ErrValidation("multipart form: %s", err.Error())
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", nil, domain.ErrValidation("form field \"file\" is required")
	}
	return hdr.Filename, f, nil
}

// pageFromQuery reads max_results and page_token.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if s := r.URL.Query().Get("max_results"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, domain.ErrValidation("max_results: %s", err.Error())
		}
		p.MaxResults = n
	}
	return p, nil
}

func optionalString(r *http.Request, name string) *string {
	if s := r.URL.Query().Get(name); s != "" {
		return &s
	}
	return nil
}

func optionalTime(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.ErrValidation("%s: %v", name, err)
	}
	return &t, nil
}
