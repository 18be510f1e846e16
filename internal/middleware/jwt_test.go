package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/config"
)

const testSecret = "test-secret-32-bytes-long-xxxxx"

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewValidator(t *testing.T) {
	t.Parallel()

	v, err := NewValidator(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewValidator(context.Background(), config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	assert.IsType(t, &SharedSecretValidator{}, v)

	// A JWKS endpoint wins over the secret and needs no discovery round trip.
	v, err = NewValidator(context.Background(), config.AuthConfig{
		JWTSecret: testSecret,
		JWKSURL:   "https://id.example.com/.well-known/jwks.json",
		IssuerURL: "https://id.example.com",
		Audience:  "sheetmap",
	})
	require.NoError(t, err)
	require.IsType(t, &OIDCValidator{}, v)
	assert.Equal(t, map[string]bool{"https://id.example.com": true}, v.(*OIDCValidator).allowedIssuers)
}

func TestSharedSecretValidator(t *testing.T) {
	t.Parallel()
	hour := time.Now().Add(time.Hour).Unix()

	rsaSigned := func() string {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "x", "exp": hour}).SignedString(key)
		require.NoError(t, err)
		return s
	}

	t.Run("full claims", func(t *testing.T) {
		t.Parallel()
		tok := signHS256(t, testSecret, jwt.MapClaims{
			"sub":   "u-1",
			"iss":   "https://id.example.com",
			"email": "ana@example.com",
			"name":  "Ana",
			"aud":   []string{"sheetmap", "cli"},
			"exp":   hour,
		})

		c, err := NewSharedSecretValidator(testSecret).Validate(context.Background(), tok)

		require.NoError(t, err)
		assert.Equal(t, "u-1", c.Subject)
		assert.Equal(t, "https://id.example.com", c.Issuer)
		assert.Equal(t, []string{"sheetmap", "cli"}, c.Audience)
		require.NotNil(t, c.Email)
		assert.Equal(t, "ana@example.com", *c.Email)
		require.NotNil(t, c.Name)
		assert.Equal(t, "Ana", *c.Name)
		assert.Equal(t, "u-1", c.Raw["sub"])
	})

	t.Run("subject only", func(t *testing.T) {
		t.Parallel()
		tok := signHS256(t, testSecret, jwt.MapClaims{"sub": "svc", "aud": "sheetmap", "exp": hour})

		c, err := NewSharedSecretValidator(testSecret).Validate(context.Background(), tok)

		require.NoError(t, err)
		assert.Equal(t, []string{"sheetmap"}, c.Audience)
		assert.Nil(t, c.Email)
		assert.Nil(t, c.Name)
	})

	rejected := map[string]string{
		"expired":      signHS256(t, testSecret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()}),
		"wrong secret": signHS256(t, "another-secret", jwt.MapClaims{"sub": "x", "exp": hour}),
		"rs256":        rsaSigned(),
		"garbage":      "a.b.c",
		"empty":        "",
	}
	for name, tok := range rejected {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c, err := NewSharedSecretValidator(testSecret).Validate(context.Background(), tok)
			assert.ErrorContains(t, err, "jwt parse:")
			assert.Nil(t, c)
		})
	}
}

func TestNewOIDCValidatorFromJWKS(t *testing.T) {
	t.Parallel()
	const jwks = "https://id.example.com/.well-known/jwks.json"

	v, err := NewOIDCValidatorFromJWKS(context.Background(), jwks, "https://id.example.com", "sheetmap", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"https://id.example.com": true}, v.allowedIssuers)

	v, err = NewOIDCValidatorFromJWKS(context.Background(), jwks, "https://id.example.com", "sheetmap",
		[]string{"https://a.example.com", "https://b.example.com"})
	require.NoError(t, err)
	assert.Len(t, v.allowedIssuers, 2)
	assert.False(t, v.allowedIssuers["https://id.example.com"])

	v, err = NewOIDCValidatorFromJWKS(context.Background(), jwks, "", "sheetmap", nil)
	require.NoError(t, err)
	assert.Empty(t, v.allowedIssuers)

	_, err = NewOIDCValidatorFromJWKS(context.Background(), "", "https://id.example.com", "sheetmap", nil)
	assert.Error(t, err)
}
