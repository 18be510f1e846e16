package ui

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestCSRF_Check(t *testing.T) {
	tests := []struct {
		name   string
		method string
		cookie string
		form   string
		header string
		want   int
	}{
		{name: "get passes", method: http.MethodGet, want: http.StatusNoContent},
		{name: "post without cookie", method: http.MethodPost, form: "tok", want: http.StatusForbidden},
		{name: "post without token", method: http.MethodPost, cookie: "tok", want: http.StatusForbidden},
		{name: "post with mismatch", method: http.MethodPost, cookie: "tok", form: "other", want: http.StatusForbidden},
		{name: "post with form token", method: http.MethodPost, cookie: "tok", form: "tok", want: http.StatusNoContent},
		{name: "post with header token", method: http.MethodPost, cookie: "tok", header: "tok", want: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			form := url.Values{"input_header": {"Name"}}
			if tc.form != "" {
				form.Set("csrf_token", tc.form)
			}
			r := httptest.NewRequest(tc.method, "/ui/mappings", strings.NewReader(form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tc.cookie})
			}
			if tc.header != "" {
				r.Header.Set("X-CSRF-Token", tc.header)
			}
			rr := httptest.NewRecorder()

			(&Handler{}).CSRF(http.HandlerFunc(noContent)).ServeHTTP(rr, r)

			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestCSRF_IssuesToken(t *testing.T) {
	h := &Handler{Production: true}
	var field bytes.Buffer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, csrfField(r).Render(&field))
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	h.CSRF(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ui/rules", nil))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.True(t, cookies[0].Secure)
	assert.Contains(t, field.String(), `value="`+cookies[0].Value+`"`)

	// An existing cookie is reused rather than rotated.
	r := httptest.NewRequest(http.MethodGet, "/ui/rules", nil)
	r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "kept"})
	rr = httptest.NewRecorder()
	field.Reset()
	h.CSRF(next).ServeHTTP(rr, r)
	assert.Empty(t, rr.Header().Get("Set-Cookie"))
	assert.Contains(t, field.String(), `value="kept"`)
}
