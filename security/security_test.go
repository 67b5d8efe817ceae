package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, VerifyPassword("pw123456", hash))
	assert.False(t, VerifyPassword("pw1234567", hash))

	// salted: same input, different hash
	again, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	token, expires, err := tokens.Issue(42, tokens.TTL())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }

	token, _, err := tokens.Issue(7, time.Hour)
	require.NoError(t, err)

	tokens.now = time.Now
	for i := 0; i < 3; i++ { // deterministic
		_, err = tokens.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestIssueRejectsNonPositiveTTL(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	for _, ttl := range []time.Duration{0, -time.Minute} {
		_, _, err := tokens.Issue(1, ttl)
		assert.Error(t, err, ttl.String())
	}
}

func TestWithClockSharesSecret(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	past := tokens.WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) })

	stale, _, err := past.Issue(5, time.Hour)
	require.NoError(t, err)
	_, err = tokens.Verify(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	fresh, _, err := past.Issue(5, 4*time.Hour)
	require.NoError(t, err)
	id, err := tokens.Verify(fresh)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	token, _, err := NewTokens("other-secret", time.Hour).Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = NewTokens("test-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("test-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokens("test-secret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
