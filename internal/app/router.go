package app

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sheetmap/internal/api"
	"sheetmap/internal/middleware"
	"sheetmap/internal/ui"
)

// RouterConfig carries what NewRouter mounts.
type RouterConfig struct {
	API                *api.Handler
	UI                 *ui.Handler
	Auth               *middleware.Authenticator
	RateLimit          middleware.RateLimitConfig // disabled when RequestsPerSecond <= 0
	CORSAllowedOrigins []string
}

// NewRouter builds the server's route tree:
//
//	/healthz, /openapi.json   public
//	/api/v1/...               JSON API, authenticated
//	/ui/...                   HTML pages, authenticated (static files and login public)
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "If-Match", middleware.RequestIDHeader},
		ExposedHeaders: []string{"ETag", middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
	}

	auth := func(next http.Handler) http.Handler { return next }
	if cfg.Auth != nil {
		auth = cfg.Auth.Middleware()
	}

	r.Get("/healthz", cfg.API.Healthz)
	r.Get("/openapi.json", api.ServeSpec)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth)
		cfg.API.Routes(r)
	})

	if cfg.UI != nil {
		r.Route("/ui", func(r chi.Router) {
			ui.MountRoutes(r, cfg.UI, auth)
		})
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/ui/", http.StatusFound)
		})
	}
	return r
}
