package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/domain"
)

// === NewClient ===

func TestNewClient_TrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8080/", "")
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
}

func TestNewClient_SetsTimeout(t *testing.T) {
	c := NewClient("http://localhost:8080", "")
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, 30*time.Second, c.HTTPClient.Timeout)
}

// === Requests ===

func TestGetDataset_PathTokenAndETag(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("ETag", `"4"`)
		_, _ = io.WriteString(w, `{"headers":["ID"],"data":[{"ID":1}]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "tok")
	ds, version, err := c.GetDataset(context.Background(), domain.DatasetOutput)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/datasets/output", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "4", version)
	assert.Equal(t, []string{"ID"}, ds.Headers)
	assert.Equal(t, float64(1), ds.Rows[0]["ID"])
}

func TestSaveMappings_IfMatchAndBody(t *testing.T) {
	var (
		gotIfMatch string
		gotBody    []domain.MappingEntry
		gotType    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotIfMatch = r.Header.Get("If-Match")
		gotType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("ETag", `"8"`)
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "")
	version, err := c.SaveMappings(context.Background(), []domain.MappingEntry{{InputHeader: "Name", OutputHeader: "Label"}}, "7")
	require.NoError(t, err)

	assert.Equal(t, `"7"`, gotIfMatch)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, []domain.MappingEntry{{InputHeader: "Name", OutputHeader: "Label"}}, gotBody)
	assert.Equal(t, "8", version)
}

func TestSaveMappings_NilSendsEmptyList(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").SaveMappings(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLookupPath_Escapes(t *testing.T) {
	var gotRawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		assert.Equal(t, "true", r.URL.Query().Get("non_empty"))
		_, _ = io.WriteString(w, `{"headers":[],"rows":[]}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").GetLookup(context.Background(), "Unit / Size", true)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/lookups/Unit%20%2F%20Size", gotRawPath)
}

func TestDeleteLookup_SendsKeyBody(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/lookups", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"Other":{"headers":["x"],"rows":[]}}`)
	}))
	t.Cleanup(srv.Close)

	reg, _, err := NewClient(srv.URL, "").DeleteLookup(context.Background(), "Color")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "Color"}, body)
	assert.Equal(t, []string{"Other"}, reg.Owners())
}

func TestRegisterLookup_DuplicateIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"lookup for Unit already registered"}`)
	}))
	t.Cleanup(srv.Close)

	table := domain.LookupTable{Headers: []string{"Unit"}}
	reg, version, err := NewClient(srv.URL, "").RegisterLookup(context.Background(), "Unit", table)

	var dup *domain.DuplicateLookupError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Unit", dup.Owner)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
	assert.Nil(t, reg)
	assert.Empty(t, version)
}

func TestUploadDataset_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/datasets/input/upload", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("eu_numbers"))
		assert.Equal(t, ";", r.URL.Query().Get("delimiter"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "in.csv", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "A;B\n1;2\n", string(data))
		_, _ = io.WriteString(w, `{"headers":["A","B"],"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	ds, _, err := NewClient(srv.URL, "").UploadDataset(context.Background(), domain.DatasetInput, "in.csv",
		strings.NewReader("A;B\n1;2\n"), UploadOptions{EuropeanNumbers: true, Delimiter: ';'}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ds.Headers)
}

func TestGetDefaultRules_MarksDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"R","description":"D"}]`)
	}))
	t.Cleanup(srv.Close)

	rules, err := NewClient(srv.URL, "").GetDefaultRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{{Name: "R", Description: "D", IsDefault: true}}, rules)
}

// === Errors ===

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "precondition failed",
			status: http.StatusPreconditionFailed,
			body:   `{"code":412,"message":"version conflict"}`,
			check: func(t *testing.T, err error) {
				var vc *domain.VersionConflictError
				require.ErrorAs(t, err, &vc)
				assert.Equal(t, "3", vc.Expected)
				assert.Equal(t, http.StatusPreconditionFailed, StatusCode(err))
			},
		},
		{
			name:   "json error body",
			status: http.StatusConflict,
			body:   `{"code":409,"message":"lookup table already registered"}`,
			check: func(t *testing.T, err error) {
				var nerr *domain.NetworkError
				require.ErrorAs(t, err, &nerr)
				assert.Equal(t, http.StatusConflict, nerr.Status)
				assert.Equal(t, http.MethodPut, nerr.Method)
				assert.Equal(t, "/rules/user", nerr.Endpoint)
				assert.Equal(t, "lookup table already registered", nerr.Message)
			},
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "upstream down\n",
			check: func(t *testing.T, err error) {
				var nerr *domain.NetworkError
				require.ErrorAs(t, err, &nerr)
				assert.Equal(t, "upstream down", nerr.Message)
				assert.Equal(t, http.StatusBadGateway, StatusCode(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			_, err := NewClient(srv.URL, "").SaveUserRules(context.Background(), nil, "3")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestMalformedResponse_IsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"headers":`)
	}))
	t.Cleanup(srv.Close)

	_, _, err := NewClient(srv.URL, "").GetDataset(context.Background(), domain.DatasetInput)
	var perr *domain.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestStatusCode_Unrelated(t *testing.T) {
	assert.Zero(t, StatusCode(io.EOF))
}
