package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager("s3cret", time.Hour, "wholesale")

	token, exp, err := m.Issue(7, RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.AdminID)
	assert.True(t, s.IsAdmin())
}

func TestVerifyRejects(t *testing.T) {
	m := NewSessionManager("s3cret", time.Hour, "wholesale")
	token, _, err := m.Issue(7, "viewer")
	require.NoError(t, err)

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.False(t, s.IsAdmin())

	other := NewSessionManager("different", time.Hour, "wholesale")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSessionManager("s3cret", time.Hour, "elsewhere").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	m := NewSessionManager("s3cret", time.Minute, "wholesale")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(1, RoleAdmin)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	m := NewSessionManager("s3cret", time.Hour, "wholesale")
	claims := jwt.MapClaims{"sub": "1", "role": RoleAdmin, "iss": "wholesale", "exp": time.Now().Add(time.Hour).Unix()}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}
