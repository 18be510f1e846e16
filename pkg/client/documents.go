package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sheetmap/internal/domain"
)

// UploadOptions are the server-side decoder options of an upload.
type UploadOptions struct {
	EuropeanNumbers bool
	KeepText        bool
	Sheet           string
	Delimiter       rune
}

func (o UploadOptions) query() url.Values {
	q := url.Values{}
	if o.EuropeanNumbers {
		q.Set("eu_numbers", "true")
	}
	if o.KeepText {
		q.Set("keep_text", "true")
	}
	if o.Sheet != "" {
		q.Set("sheet", o.Sheet)
	}
	if o.Delimiter != 0 {
		q.Set("delimiter", string(o.Delimiter))
	}
	return q
}

func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader, opts UploadOptions, ifMatch string, out any) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		query:       opts.query(),
		ifMatch:     ifMatch,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, out)
}

// === Datasets ===

func datasetPath(kind domain.DatasetKind) string {
	return "/datasets/" + string(kind)
}

// GetDataset fetches the input or output dataset.
func (c *Client) GetDataset(ctx context.Context, kind domain.DatasetKind) (domain.Dataset, string, error) {
	var ds domain.Dataset
	v, err := c.getJSON(ctx, datasetPath(kind), nil, &ds)
	return ds, v, err
}

// SaveDataset replaces a dataset.
func (c *Client) SaveDataset(ctx context.Context, kind domain.DatasetKind, ds domain.Dataset, ifMatch string) (string, error) {
	return c.sendJSON(ctx, http.MethodPut, datasetPath(kind), ifMatch, ds, nil)
}

// UploadDataset sends a spreadsheet for the server to decode and store.
func (c *Client) UploadDataset(ctx context.Context, kind domain.DatasetKind, filename string, r io.Reader, opts UploadOptions, ifMatch string) (domain.Dataset, string, error) {
	var ds domain.Dataset
	v, err := c.upload(ctx, datasetPath(kind)+"/upload", filename, r, opts, ifMatch, &ds)
	return ds, v, err
}

// === Mappings ===

// GetMappings fetches the header mapping list.
func (c *Client) GetMappings(ctx context.Context) ([]domain.MappingEntry, string, error) {
	var out []domain.MappingEntry
	v, err := c.getJSON(ctx, "/mappings", nil, &out)
	return out, v, err
}

// SaveMappings replaces the header mapping list.
func (c *Client) SaveMappings(ctx context.Context, entries []domain.MappingEntry, ifMatch string) (string, error) {
	if entries == nil {
		entries = []domain.MappingEntry{}
	}
	return c.sendJSON(ctx, http.MethodPut, "/mappings", ifMatch, entries, nil)
}

// === Lookups ===

func lookupPath(owner string) string {
	return "/lookups/" + url.PathEscape(owner)
}

// GetLookups fetches the whole lookup registry.
func (c *Client) GetLookups(ctx context.Context) (*domain.LookupRegistry, string, error) {
	reg := &domain.LookupRegistry{}
	v, err := c.getJSON(ctx, "/lookups", nil, reg)
	return reg, v, err
}

// ReplaceLookups overwrites the registry.
func (c *Client) ReplaceLookups(ctx context.Context, reg *domain.LookupRegistry, ifMatch string) (*domain.LookupRegistry, string, error) {
	out := &domain.LookupRegistry{}
	v, err := c.sendJSON(ctx, http.MethodPut, "/lookups", ifMatch, reg, out)
	return out, v, err
}

// MergeLookups overlays reg onto the stored registry on the server.
func (c *Client) MergeLookups(ctx context.Context, reg *domain.LookupRegistry) (*domain.LookupRegistry, string, error) {
	out := &domain.LookupRegistry{}
	v, err := c.sendJSON(ctx, http.MethodPatch, "/lookups", "", reg, out)
	return out, v, err
}

// RegisterLookup attaches table to owner. A 409 from the server means the
// owner already has a table and is returned as a DuplicateLookupError.
func (c *Client) RegisterLookup(ctx context.Context, owner string, table domain.LookupTable) (*domain.LookupRegistry, string, error) {
	out := &domain.LookupRegistry{}
	v, err := c.sendJSON(ctx, http.MethodPost, lookupPath(owner), "", table, out)
	if StatusCode(err) == http.StatusConflict {
		return nil, "", &domain.DuplicateLookupError{Owner: owner}
	}
	return out, v, err
}

// DeleteLookup detaches owner's table, using the body-keyed endpoint.
func (c *Client) DeleteLookup(ctx context.Context, owner string) (*domain.LookupRegistry, string, error) {
	out := &domain.LookupRegistry{}
	v, err := c.sendJSON(ctx, http.MethodDelete, "/lookups", "", map[string]string{"key": owner}, out)
	return out, v, err
}

// GetLookup fetches one table. nonEmpty selects the display projection.
func (c *Client) GetLookup(ctx context.Context, owner string, nonEmpty bool) (domain.LookupTable, error) {
	var q url.Values
	if nonEmpty {
		q = url.Values{"non_empty": {"true"}}
	}
	var t domain.LookupTable
	_, err := c.getJSON(ctx, lookupPath(owner), q, &t)
	return t, err
}

// LookupValues returns owner's filtered candidate values. An empty column
// lets the server pick the candidate column.
func (c *Client) LookupValues(ctx context.Context, owner, column, fragment string) ([]string, error) {
	q := url.Values{}
	if column != "" {
		q.Set("column", column)
	}
	if fragment != "" {
		q.Set("q", fragment)
	}
	var out []string
	_, err := c.getJSON(ctx, lookupPath(owner)+"/values", q, &out)
	return out, err
}

// === Default fields ===

// GetDefaultFields fetches the header-keyed default-fields blob.
func (c *Client) GetDefaultFields(ctx context.Context) (domain.ColumnBlob, string, error) {
	var b domain.ColumnBlob
	v, err := c.getJSON(ctx, "/default-fields", nil, &b)
	return b, v, err
}

// SaveDefaultFields replaces the default-fields blob.
func (c *Client) SaveDefaultFields(ctx context.Context, blob domain.ColumnBlob, ifMatch string) (string, error) {
	return c.sendJSON(ctx, http.MethodPut, "/default-fields", ifMatch, blob, nil)
}

// UploadDefaultFields sends a spreadsheet to become the default-fields blob.
func (c *Client) UploadDefaultFields(ctx context.Context, filename string, r io.Reader, opts UploadOptions, ifMatch string) (domain.ColumnBlob, string, error) {
	var b domain.ColumnBlob
	v, err := c.upload(ctx, "/default-fields/upload", filename, r, opts, ifMatch, &b)
	return b, v, err
}

// DefaultFieldValues returns header's filtered default values.
func (c *Client) DefaultFieldValues(ctx context.Context, header, fragment string) ([]string, error) {
	q := url.Values{"header": {header}}
	if fragment != "" {
		q.Set("q", fragment)
	}
	var out []string
	_, err := c.getJSON(ctx, "/default-fields/values", q, &out)
	return out, err
}

// GetFieldMappings fetches the saved {header1, value} rows.
func (c *Client) GetFieldMappings(ctx context.Context) ([]domain.FieldValue, string, error) {
	var out []domain.FieldValue
	v, err := c.getJSON(ctx, "/default-fields/mappings", nil, &out)
	return out, v, err
}

// SaveFieldMappings replaces the saved {header1, value} rows.
func (c *Client) SaveFieldMappings(ctx context.Context, values []domain.FieldValue, ifMatch string) (string, error) {
	if values == nil {
		values = []domain.FieldValue{}
	}
	return c.sendJSON(ctx, http.MethodPut, "/default-fields/mappings", ifMatch, values, nil)
}

// Resolution is the server's fuzzy resolution of one header.
type Resolution struct {
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

// ResolveField resolves header against the saved field mappings.
func (c *Client) ResolveField(ctx context.Context, header string) (Resolution, error) {
	var out Resolution
	_, err := c.getJSON(ctx, "/default-fields/resolve", url.Values{"header": {header}}, &out)
	return out, err
}

// === Rules ===

// GetDefaultRules fetches the read-only default rules.
func (c *Client) GetDefaultRules(ctx context.Context) ([]domain.Rule, error) {
	var out []domain.Rule
	if _, err := c.getJSON(ctx, "/rules/default", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].IsDefault = true
	}
	return out, nil
}

// GetUserRules fetches the user-defined rules.
func (c *Client) GetUserRules(ctx context.Context) ([]domain.Rule, string, error) {
	var out []domain.Rule
	v, err := c.getJSON(ctx, "/rules/user", nil, &out)
	return out, v, err
}

// SaveUserRules replaces the user-defined rules.
func (c *Client) SaveUserRules(ctx context.Context, rules []domain.Rule, ifMatch string) (string, error) {
	if rules == nil {
		rules = []domain.Rule{}
	}
	return c.sendJSON(ctx, http.MethodPut, "/rules/user", ifMatch, rules, nil)
}

// === Audit ===

// AuditQuery filters the audit log.
type AuditQuery struct {
	Action     string
	Key        string
	Since      time.Time
	MaxResults int
	PageToken  string
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Entries       []domain.AuditEntry `json:"entries"`
	Total         int64               `json:"total"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

// ListAudit fetches one page of the audit log, newest first.
func (c *Client) ListAudit(ctx context.Context, q AuditQuery) (AuditPage, error) {
	v := url.Values{}
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if q.Key != "" {
		v.Set("key", q.Key)
	}
	if !q.Since.IsZero() {
		v.Set("since", q.Since.UTC().Format(time.RFC3339))
	}
	if q.MaxResults > 0 {
		v.Set("max_results", strconv.Itoa(q.MaxResults))
	}
	if q.PageToken != "" {
		v.Set("page_token", q.PageToken)
	}
	var page AuditPage
	_, err := c.getJSON(ctx, "/audit", v, &page)
	return page, err
}
