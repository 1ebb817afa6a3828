package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain"
)

func testManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "unit-test-secret-unit-test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour,
		Issuer:          "clinicdesk-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager(time.Minute)
	claims := &domain.Claims{AccountID: uuid.New(), Username: "reception01", IsAdmin: false}

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.AccountID, got.AccountID)
	assert.Equal(t, "reception01", got.Username)

	got, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.AccountID, got.AccountID)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{AccountID: uuid.New(), Username: "u"})
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{AccountID: uuid.New(), Username: "u"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedTokenRejected(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{AccountID: uuid.New(), Username: "u"})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{
		Secret: "a-different-secret-a-different-se", Issuer: "clinicdesk-test",
		AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour,
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
