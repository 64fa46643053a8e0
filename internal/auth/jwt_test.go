package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", "order-fulfillment", 15*time.Minute)
}

func TestJWTService_GenerateAccessToken(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken("buyer-123", "buyer@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	assert.Equal(t, 15*time.Minute, service.Expiry())
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken("buyer-456", "buyer@example.com")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "buyer-456", claims.BuyerID())
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "order-fulfillment", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret-key-for-testing-purposes", "", -time.Minute)

	token, _, err := service.GenerateAccessToken("buyer-1", "")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	other := NewJWTService("another-secret-key-for-testing-purposes", "order-fulfillment", time.Minute)
	token, _, err := other.GenerateAccessToken("buyer-1", "")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-secret-key-for-testing-purposes", "someone-else", time.Minute)
	token, _, err := other.GenerateAccessToken("buyer-1", "")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "buyer-1",
		Issuer:    "order-fulfillment",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_MissingSubject(t *testing.T) {
	token, _, err := newTestJWTService().GenerateAccessToken("", "")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
