package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	secretKey := "test-secret-key-for-testing"
	jwtManager := NewJWTManager(secretKey, "gotrs-desk", time.Hour)

	t.Run("GenerateToken creates valid token", func(t *testing.T) {
		token, claims, err := jwtManager.GenerateToken(1, 10, "admin")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, claims.ID)
		assert.Equal(t, "1", claims.Subject)
	})

	t.Run("ValidateToken validates correct token", func(t *testing.T) {
		token, issued, err := jwtManager.GenerateToken(2, 20, "user")
		require.NoError(t, err)

		claims, err := jwtManager.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(2), claims.UserID)
		assert.Equal(t, uint(20), claims.CompanyID)
		assert.Equal(t, "user", claims.Profile)
		assert.Equal(t, issued.ID, claims.ID)
	})

	t.Run("ValidateToken rejects invalid token", func(t *testing.T) {
		_, err := jwtManager.ValidateToken("invalid.token.here")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects expired token", func(t *testing.T) {
		shortManager := NewJWTManager(secretKey, "gotrs-desk", -time.Minute)

		token, _, err := shortManager.GenerateToken(1, 1, "admin")
		require.NoError(t, err)

		_, err = shortManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("ValidateToken rejects wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret", "gotrs-desk", time.Hour)
		token, _, err := other.GenerateToken(1, 1, "admin")
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects foreign issuer", func(t *testing.T) {
		other := NewJWTManager(secretKey, "someone-else", time.Hour)
		token, _, err := other.GenerateToken(1, 1, "admin")
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects tokens without tenant", func(t *testing.T) {
		token, _, err := jwtManager.GenerateToken(1, 0, "admin")
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects non HMAC tokens", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, CompanyID: 1})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(signed)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}
