package authUtils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	raw, err := GenerateToken("s3cret", "uid-1", "a@b.c", time.Hour)
	require.NoError(t, err)

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "uid-1", claims["user_id"])
	assert.Equal(t, "a@b.c", claims["email"])
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "uid-1", "", 0)
	assert.Error(t, err)
}
