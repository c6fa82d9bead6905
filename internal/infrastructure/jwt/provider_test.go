package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func mint(t *testing.T, key *rsa.PrivateKey, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func claimsFor(userID string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserID:    userID,
		Email:     "a@example.com",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestVerify_Valid(t *testing.T) {
	key := newKey(t)
	p := NewProviderFromKey(&key.PublicKey)

	claims, err := p.Verify(mint(t, key, jwt.SigningMethodRS256, claimsFor("u1", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestVerify_Expired(t *testing.T) {
	key := newKey(t)
	p := NewProviderFromKey(&key.PublicKey)

	_, err := p.Verify(mint(t, key, jwt.SigningMethodRS256, claimsFor("u1", -time.Minute)))
	assert.Error(t, err)
}

func TestVerify_WrongKey(t *testing.T) {
	p := NewProviderFromKey(&newKey(t).PublicKey)

	_, err := p.Verify(mint(t, newKey(t), jwt.SigningMethodRS256, claimsFor("u1", time.Hour)))
	assert.Error(t, err)
}

func TestVerify_MissingUserID(t *testing.T) {
	key := newKey(t)
	p := NewProviderFromKey(&key.PublicKey)

	_, err := p.Verify(mint(t, key, jwt.SigningMethodRS256, claimsFor("", time.Hour)))
	assert.Error(t, err)
}

func TestVerify_RejectsHMAC(t *testing.T) {
	key := newKey(t)
	p := NewProviderFromKey(&key.PublicKey)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor("u1", time.Hour)).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}
