package auth

import (
	"testing"
	"time"

	"podm-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseToken(t *testing.T) {
	tokenString := signToken(t, "secret", "u_1", model.RoleCreator)

	caller, err := ParseToken(tokenString, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u_1", caller.ID)
	assert.Equal(t, model.RoleCreator, caller.Role)
	assert.True(t, caller.IsCreator())
}

func TestParseTokenWrongSecret(t *testing.T) {
	tokenString := signToken(t, "secret", "u_1", model.RoleFan)

	_, err := ParseToken(tokenString, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenMissingSubject(t *testing.T) {
	tokenString := signToken(t, "secret", "", model.RoleFan)

	_, err := ParseToken(tokenString, "secret")
	assert.Error(t, err)
}
