package service

import (
	"testing"
	"time"

	"taskmaster/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		m, err := NewJWTManager("secret", alg)
		require.NoError(t, err)

		id := uuid.New()
		token, err := m.Issue(id)
		require.NoError(t, err)

		got, err := m.Parse(token)
		require.NoError(t, err, alg)
		assert.Equal(t, id, got)
	}
}

func TestJWTRejectsUnsupportedAlgorithm(t *testing.T) {
	_, err := NewJWTManager("secret", "RS256")
	assert.Error(t, err)

	_, err = NewJWTManager("", "HS256")
	assert.Error(t, err)
}

func TestJWTExpiresAfterThirtyDays(t *testing.T) {
	m, err := NewJWTManager("secret", "HS256")
	require.NoError(t, err)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	token, err := m.Issue(uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(TokenTTL - time.Minute) }
	_, err = m.Parse(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestJWTRejectsForeignTokens(t *testing.T) {
	m, err := NewJWTManager("secret", "HS256")
	require.NoError(t, err)
	id := uuid.New()

	other, _ := NewJWTManager("other-secret", "HS256")
	wrongSecret, _ := other.Issue(id)

	stronger, _ := NewJWTManager("secret", "HS512")
	wrongAlg, _ := stronger.Issue(id)

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": id.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id.String(),
	}).SignedString([]byte("secret"))

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"wrong secret": wrongSecret,
		"wrong alg":    wrongAlg,
		"none alg":     unsigned,
		"no expiry":    noExpiry,
		"bad subject":  badSubject,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		_, err := m.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, name)
	}
}
