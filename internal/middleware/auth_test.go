package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/config"
	"sheetmap/internal/domain"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v *stubValidator) Validate(_ context.Context, _ string) (*JWTClaims, error) {
	return v.claims, v.err
}

// nextHandler records the context principal.
func nextHandler() (http.Handler, func() (domain.ContextPrincipal, bool)) {
	var cp domain.ContextPrincipal
	var found bool
	h := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		cp, found = domain.PrincipalFromContext(r.Context())
	})
	return h, func() (domain.ContextPrincipal, bool) { return cp, found }
}

func failHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})
}

func strPtr(s string) *string { return &s }

func TestAuth_ValidJWT(t *testing.T) {
	handler, getPrincipal := nextHandler()
	auth := NewAuthenticator(&stubValidator{claims: &JWTClaims{
		Subject: "user1",
		Email:   strPtr("User1@Example.com"),
		Raw:     map[string]interface{}{"sub": "user1", "email": "User1@Example.com"},
	}}, config.AuthConfig{NameClaim: "email"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	auth.Middleware()(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cp, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "user1@example.com", cp.Name)
	assert.Equal(t, "user1", cp.Subject)
}

func TestAuth_InvalidJWT(t *testing.T) {
	auth := NewAuthenticator(&stubValidator{err: fmt.Errorf("token expired")}, config.AuthConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	auth.Middleware()(failHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoCredentials(t *testing.T) {
	auth := NewAuthenticator(&stubValidator{}, config.AuthConfig{}, nil)

	w := httptest.NewRecorder()
	auth.Middleware()(failHandler(t)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":401`)
}

func TestAuth_MissingPrincipalClaims(t *testing.T) {
	auth := NewAuthenticator(&stubValidator{claims: &JWTClaims{Raw: map[string]interface{}{}}},
		config.AuthConfig{NameClaim: "sub"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer no-sub-token")
	w := httptest.NewRecorder()
	auth.Middleware()(failHandler(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_DisabledPassesThrough(t *testing.T) {
	handler, getPrincipal := nextHandler()
	auth := NewAuthenticator(nil, config.AuthConfig{}, nil)

	w := httptest.NewRecorder()
	auth.Middleware()(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	_, found := getPrincipal()
	assert.False(t, found)
}

func TestAuth_ResolveDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AuthConfig
		claims   *JWTClaims
		wantName string
	}{
		{
			name:     "email claim",
			cfg:      config.AuthConfig{NameClaim: "email"},
			claims:   &JWTClaims{Subject: "sub-id", Raw: map[string]interface{}{"sub": "sub-id", "email": "user@example.com"}},
			wantName: "user@example.com",
		},
		{
			name:     "default claim is email",
			claims:   &JWTClaims{Subject: "sub-id", Raw: map[string]interface{}{"email": "who@example.com"}},
			wantName: "who@example.com",
		},
		{
			name:     "preferred_username fallback",
			cfg:      config.AuthConfig{NameClaim: "email"},
			claims:   &JWTClaims{Subject: "sub-id", Raw: map[string]interface{}{"sub": "sub-id", "preferred_username": "jdoe"}},
			wantName: "jdoe",
		},
		{
			name:     "sub fallback",
			cfg:      config.AuthConfig{NameClaim: "email"},
			claims:   &JWTClaims{Subject: "sub-guid-123", Raw: map[string]interface{}{"sub": "sub-guid-123"}},
			wantName: "sub-guid-123",
		},
		{
			name:     "custom claim",
			cfg:      config.AuthConfig{NameClaim: "upn"},
			claims:   &JWTClaims{Subject: "sub-id", Raw: map[string]interface{}{"upn": "custom@example.com"}},
			wantName: "custom@example.com",
		},
		{
			name:     "sanitized",
			cfg:      config.AuthConfig{NameClaim: "sub"},
			claims:   &JWTClaims{Subject: "  UPPER-Case  ", Raw: map[string]interface{}{"sub": "  UPPER-Case  "}},
			wantName: "upper-case",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &Authenticator{cfg: tt.cfg}
			assert.Equal(t, tt.wantName, auth.resolveDisplayName(tt.claims))
		})
	}
}

func TestNewValidator_AuthDefaults(t *testing.T) {
	v, err := NewValidator(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewValidator(context.Background(), config.AuthConfig{JWTSecret: "s3cret"})
	require.NoError(t, err)
	assert.IsType(t, &SharedSecretValidator{}, v)
}
