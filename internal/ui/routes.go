package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetmap/internal/ui/assets"
)

// MountRoutes registers the pages on r, which is expected to be mounted at
// /ui. authMiddleware guards every page but the static files and login.
func MountRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.CookieHeaderBridge)
		r.Use(authMiddleware)
		r.Use(h.CSRF)

		r.Get("/", h.Home)
		r.Get("/datasets/{kind}", h.Dataset)
		r.Get("/mappings", h.MappingList)
		r.Post("/mappings", h.SetMapping)
		r.Get("/lookups", h.LookupList)
		r.Get("/lookups/{owner}", h.LookupDetail)
		r.Get("/rules", h.RuleList)
		r.Post("/rules", h.AddRule)
		r.Post("/rules/delete", h.DeleteRule)
	})
}
