package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sheetmap/internal/config"
	"sheetmap/internal/domain"
)

// Authenticator turns bearer tokens into a context principal.
type Authenticator struct {
	validator JWTValidator
	cfg       config.AuthConfig
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator. A nil validator disables
// authentication; requests then run as the anonymous principal.
func NewAuthenticator(validator JWTValidator, cfg config.AuthConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{validator: validator, cfg: cfg, logger: logger}
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if a.validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized: bearer token required")
				return
			}
			claims, err := a.validator.Validate(r.Context(), token)
			if err != nil {
				a.logger.DebugContext(r.Context(), "token rejected", "error", err,
					"request_id", RequestIDFromContext(r.Context()))
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid token")
				return
			}
			name := a.resolveDisplayName(claims)
			if name == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized: token has no usable principal claim")
				return
			}
			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{Name: name, Subject: claims.Subject})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveDisplayName picks the configured name claim, then
// preferred_username, then sub. The result is trimmed and lowercased.
func (a *Authenticator) resolveDisplayName(c *JWTClaims) string {
	claim := a.cfg.NameClaim
	if claim == "" {
		claim = "email"
	}
	for _, key := range []string{claim, "preferred_username"} {
		if s, ok := c.Raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.ToLower(strings.TrimSpace(s))
		}
	}
	return strings.ToLower(strings.TrimSpace(c.Subject))
}
