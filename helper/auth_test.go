package helper

import (
	"testing"
	"time"

	"canteen_manager/constants"
	"canteen_manager/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("secret124", hash))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	claim := model.TokenClaim{UserId: 7, Email: "a@b.com", Name: "A", Role: constants.ROLE_STUDENT}
	token, err := GenerateAccessToken(testSecret, claim, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, claim, got)
	assert.False(t, got.IsAdmin())
}

func TestParseTokenRejects(t *testing.T) {
	claim := model.TokenClaim{UserId: 7, Role: constants.ROLE_STUDENT}

	expired, err := GenerateAccessToken(testSecret, claim, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := GenerateAccessToken([]byte("other"), claim, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsUnknownRoleAndAlgorithm(t *testing.T) {
	forged, err := GenerateAccessToken(testSecret, model.TokenClaim{UserId: 1, Role: "superuser"}, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		TokenClaim:       model.TokenClaim{Role: constants.ROLE_ADMIN},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminToken(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, model.TokenClaim{Name: "Admin", Role: constants.ROLE_ADMIN}, time.Hour)
	require.NoError(t, err)
	got, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}
