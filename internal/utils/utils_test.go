package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "S3cret!"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}

func TestHashPasswordCostFallback(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestAccessTokensAreFreshButDecodeToSameUser(t *testing.T) {
	a, err := NewAccessToken("secret", 42, "USER", 15)
	require.NoError(t, err)
	b, err := NewAccessToken("secret", 42, "USER", 15)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	ca, err := ParseAccessToken("secret", a.Token)
	require.NoError(t, err)
	cb, err := ParseAccessToken("secret", b.Token)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), ca.UserID)
	assert.Equal(t, ca.UserID, cb.UserID)
	assert.Equal(t, "USER", ca.Role)
	assert.NotEqual(t, ca.ID, cb.ID)
	assert.WithinDuration(t, a.Exp, ca.Exp, time.Second)
}

func TestParseAccessTokenRejects(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, "USER", 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("secret", 1, "USER", -5)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("secret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	r, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, r.Raw, 96)
	assert.True(t, r.Exp.After(time.Now().Add(6*24*time.Hour)))

	assert.Equal(t, HashRefreshRaw(r.Raw), HashRefreshRaw(r.Raw))
	assert.Len(t, HashRefreshRaw(r.Raw), 64)
}

func TestTicketQR(t *testing.T) {
	png, err := TicketQR("BK-1234", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
