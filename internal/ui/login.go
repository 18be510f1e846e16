package ui

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	bearerCookieName = "ui_bearer"
	bearerCookieAge  = 24 * 60 * 60
)

// LoginPage asks for a bearer token. Page loads cannot carry an
// Authorization header, so the token lives in a cookie.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, loginPage(r.URL.Query().Get("error")))
}

// LoginSubmit stores the pasted token and returns to the overview.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	var token string
	if err := r.ParseForm(); err == nil {
		token = strings.TrimSpace(r.PostForm.Get("token"))
	}
	if token == "" {
		http.Redirect(w, r, "/ui/login?error="+url.QueryEscape("Paste a token to sign in."), http.StatusSeeOther)
		return
	}
	http.SetCookie(w, h.cookie(bearerCookieName, token, bearerCookieAge))
	http.Redirect(w, r, "/ui", http.StatusSeeOther)
}

// Logout drops the token cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie(bearerCookieName, "", -1))
	http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
}

// CookieHeaderBridge lets the API's bearer authentication see the token
// cookie. With authentication on, a browser holding neither is sent to the
// login page instead of getting a bare 401.
func (h *Handler) CookieHeaderBridge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			token := readCookie(r, bearerCookieName)
			switch {
			case token != "":
				r.Header.Set("Authorization", "Bearer "+token)
			case h.AuthEnabled:
				http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
