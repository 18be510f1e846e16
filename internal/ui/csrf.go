package ui

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

const (
	csrfCookieName = "ui_csrf"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
)

type csrfContextKey struct{}

// CSRF implements the double-submit check for the edit forms. Every page
// load gets a token cookie; POSTs must echo it in the csrf_token field or
// the X-CSRF-Token header.
func (h *Handler) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := readCookie(r, csrfCookieName)
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submittedCSRF(r))) != 1 {
				renderHTML(w, http.StatusForbidden, errorPage("Form Expired",
					"The form's security token did not match. Reload the page and submit again."))
				return
			}
		}
		if token == "" {
			token = newCSRFToken()
			http.SetCookie(w, h.cookie(csrfCookieName, token, 0))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey{}, token)))
	})
}

func submittedCSRF(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(csrfHeader)); v != "" {
		return v
	}
	_ = r.ParseForm()
	return strings.TrimSpace(r.PostForm.Get(csrfFormField))
}

// csrfField is the hidden input every edit form carries.
func csrfField(r *http.Request) gomponents.Node {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	return html.Input(html.Type("hidden"), html.Name(csrfFormField), html.Value(token))
}

func newCSRFToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

// cookie builds an HttpOnly, path-wide cookie. maxAge follows http.Cookie:
// 0 for a session cookie, negative to delete.
func (h *Handler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
	}
}
