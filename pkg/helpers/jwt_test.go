package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
		Issuer:        "go-account-service",
	}
}

var janeIdentity = Identity{UserID: "u-1", Username: "janed", Email: "jane@x.com", FullName: "Jane Doe"}

func TestNewJWTManager_Misconfiguration(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessSecret = ""
	_, err := NewJWTManager(cfg)
	assert.ErrorIs(t, err, ErrMissingTokenSecret)

	cfg = testTokenConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err = NewJWTManager(cfg)
	assert.ErrorIs(t, err, ErrSharedTokenSecret)

	cfg = testTokenConfig()
	cfg.RefreshTTL = 0
	_, err = NewJWTManager(cfg)
	assert.ErrorIs(t, err, ErrInvalidTokenTTL)
}

func TestJWTManager_IssuePair(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m, err := NewJWTManager(testTokenConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	pair, err := m.IssuePair(janeIdentity)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), pair.AccessTokenExpiry)
	assert.Equal(t, now.Add(240*time.Hour), pair.RefreshTokenExpiry)

	access, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", access.UserID)
	assert.Equal(t, "janed", access.Username)
	assert.Equal(t, "jane@x.com", access.Email)
	assert.Equal(t, "Jane Doe", access.FullName)
	assert.NotEmpty(t, access.ID)

	refresh, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refresh.UserID)
}

func TestJWTManager_PairsAreUnique(t *testing.T) {
	now := time.Now()
	m, err := NewJWTManager(testTokenConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	first, err := m.IssuePair(janeIdentity)
	require.NoError(t, err)
	second, err := m.IssuePair(janeIdentity)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestJWTManager_SecretsAreNotInterchangeable(t *testing.T) {
	m, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)

	pair, err := m.IssuePair(janeIdentity)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.Error(t, err)
	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredRefreshToken(t *testing.T) {
	issuedAt := time.Now().Add(-300 * time.Hour)
	issuer, err := NewJWTManager(testTokenConfig(), WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	pair, err := issuer.IssuePair(janeIdentity)
	require.NoError(t, err)

	verifier, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)
	_, err = verifier.ParseRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsForeignSignatureAndAlgorithm(t *testing.T) {
	m, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "go-account-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := forged.SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(s)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &RefreshClaims{UserID: "u-1"})
	s, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(s)
	assert.Error(t, err)

	_, err = m.ParseRefreshToken("not.a.jwt")
	assert.Error(t, err)
}

func TestJWTManager_RejectsWrongIssuer(t *testing.T) {
	other := testTokenConfig()
	other.Issuer = "someone-else"
	foreign, err := NewJWTManager(other)
	require.NoError(t, err)
	pair, err := foreign.IssuePair(janeIdentity)
	require.NoError(t, err)

	m, err := NewJWTManager(testTokenConfig())
	require.NoError(t, err)
	_, err = m.ParseAccessToken(pair.AccessToken)
	assert.Error(t, err)
}
