package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claims(aud, iss string, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "uploader",
		"aud": aud,
		"iss": iss,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "r2-gateway", "r2-gateway")

	token, err := a.GenerateToken(claims("r2-gateway", "r2-gateway", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	parsed, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "r2-gateway", "r2-gateway")
	other := NewJWTAuthenticator("other-secret", "r2-gateway", "r2-gateway")

	tests := map[string]jwt.MapClaims{
		"expired":        claims("r2-gateway", "r2-gateway", time.Now().Add(-time.Hour)),
		"wrong audience": claims("someone-else", "r2-gateway", time.Now().Add(time.Hour)),
		"wrong issuer":   claims("r2-gateway", "someone-else", time.Now().Add(time.Hour)),
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			token, err := a.GenerateToken(c)
			require.NoError(t, err)
			_, err = a.ValidateToken(token)
			assert.Error(t, err)
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := other.GenerateToken(claims("r2-gateway", "r2-gateway", time.Now().Add(time.Hour)))
		require.NoError(t, err)
		_, err = a.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := a.GenerateToken(jwt.MapClaims{"aud": "r2-gateway", "iss": "r2-gateway"})
		require.NoError(t, err)
		_, err = a.ValidateToken(token)
		assert.Error(t, err)
	})
}
