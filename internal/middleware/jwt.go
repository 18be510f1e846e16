// Package middleware provides the HTTP middleware of the sheetmap API:
// bearer-token authentication, request IDs and rate limiting.
package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"sheetmap/internal/config"
)

// JWTClaims holds the parsed claims from a validated JWT.
type JWTClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Email    *string
	Name     *string
	Raw      map[string]interface{}
}

// JWTValidator validates a JWT token and returns the parsed claims.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// NewValidator builds the validator selected by cfg: a fixed JWKS endpoint
// when one is set, then OIDC discovery when an issuer is set, else the HS256
// shared secret. It returns nil when auth is disabled.
func NewValidator(ctx context.Context, cfg config.AuthConfig) (JWTValidator, error) {
	switch {
	case cfg.JWKSURL != "":
		return NewOIDCValidatorFromJWKS(ctx, cfg.JWKSURL, cfg.IssuerURL, cfg.Audience, nil)
	case cfg.IssuerURL != "":
		return NewOIDCValidator(ctx, cfg.IssuerURL, cfg.Audience, nil)
	case cfg.JWTSecret != "":
		return NewSharedSecretValidator(cfg.JWTSecret), nil
	default:
		return nil, nil
	}
}

// SharedSecretValidator validates JWTs signed with a shared HS256 secret.
type SharedSecretValidator struct {
	secret []byte
}

// NewSharedSecretValidator creates a validator for HS256 tokens.
func NewSharedSecretValidator(secret string) *SharedSecretValidator {
	return &SharedSecretValidator{secret: []byte(secret)}
}

// Validate verifies the signature and expiry and extracts claims.
func (v *SharedSecretValidator) Validate(_ context.Context, tokenString string) (*JWTClaims, error) {
	tok, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	raw, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("jwt parse: unsupported claim type %T", tok.Claims)
	}
	return claimsFromMap(raw), nil
}

func claimsFromMap(raw map[string]interface{}) *JWTClaims {
	c := &JWTClaims{Raw: raw}
	c.Subject, _ = raw["sub"].(string)
	c.Issuer, _ = raw["iss"].(string)
	if s, ok := raw["email"].(string); ok {
		c.Email = &s
	}
	if s, ok := raw["name"].(string); ok {
		c.Name = &s
	}
	switch aud := raw["aud"].(type) {
	case string:
		c.Audience = []string{aud}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok {
				c.Audience = append(c.Audience, s)
			}
		}
	}
	return c
}

// OIDCValidator validates JWTs against an identity provider's keys.
type OIDCValidator struct {
	verifier       *oidc.IDTokenVerifier
	allowedIssuers map[string]bool
}

// NewOIDCValidator discovers the provider at issuerURL.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCValidator{
		verifier:       provider.Verifier(&oidc.Config{ClientID: audience}),
		allowedIssuers: issuerSet(issuerURL, allowedIssuers),
	}, nil
}

// NewOIDCValidatorFromJWKS skips discovery and fetches keys from jwksURL.
// An empty issuerURL accepts tokens from any issuer.
func NewOIDCValidatorFromJWKS(ctx context.Context, jwksURL, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}
	keys := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &OIDCValidator{
		verifier:       oidc.NewVerifier(issuerURL, keys, &oidc.Config{ClientID: audience, SkipIssuerCheck: issuerURL == ""}),
		allowedIssuers: issuerSet(issuerURL, allowedIssuers),
	}, nil
}

func issuerSet(issuerURL string, allowed []string) map[string]bool {
	set := make(map[string]bool, len(allowed)+1)
	for _, iss := range allowed {
		set[iss] = true
	}
	if len(set) == 0 && issuerURL != "" {
		set[issuerURL] = true
	}
	return set
}

// Validate verifies the token and checks its issuer against the allowlist.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if len(v.allowedIssuers) > 0 && !v.allowedIssuers[idToken.Issuer] {
		return nil, fmt.Errorf("issuer %q not in allowed list", idToken.Issuer)
	}
	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	c := claimsFromMap(raw)
	c.Subject = idToken.Subject
	c.Issuer = idToken.Issuer
	c.Audience = idToken.Audience
	return c, nil
}
