package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "none sent", incoming: ""},
		{name: "token kept", incoming: "upload-7f3a_B", keep: true},
		{name: "128 chars kept", incoming: strings.Repeat("x", 128), keep: true},
		{name: "129 chars replaced", incoming: strings.Repeat("x", 129)},
		{name: "newline replaced", incoming: "abc\nSAVE_MAPPINGS ok"},
		{name: "space replaced", incoming: "two words"},
		{name: "markup replaced", incoming: "<b>id</b>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var inContext string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inContext = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, inContext)
			assert.Equal(t, inContext, rec.Header().Get(RequestIDHeader))
			if tc.keep {
				assert.Equal(t, tc.incoming, inContext)
			} else {
				assert.NotEqual(t, tc.incoming, inContext)
				assert.Len(t, inContext, 36)
			}
		})
	}
}

func TestRequestIDFromContext_Unset(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
