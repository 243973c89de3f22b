package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRealm    = "parentic-ai"
	testClientID = "parentic-client"
)

type keycloakFixture struct {
	key    *rsa.PrivateKey
	client *KeycloakClient
}

// newKeycloakFixture spins up a fake realm endpoint serving the public key
// the way Keycloak does: base64 DER without PEM armor.
func newKeycloakFixture(t *testing.T) *keycloakFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicKey := base64.StdEncoding.EncodeToString(der)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/realms/"+testRealm, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"public_key": publicKey})
	}))
	t.Cleanup(server.Close)

	return &keycloakFixture{
		key:    key,
		client: NewKeycloakClient(server.URL, testRealm, testClientID),
	}
}

func (f *keycloakFixture) signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "kc-user-123",
			Audience:  jwt.ClaimStrings{testClientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:             "jo@example.com",
		PreferredUsername: "jo",
		GivenName:         "Jo",
		FamilyName:        "Doe",
	}
}

func TestVerifyTokenValid(t *testing.T) {
	f := newKeycloakFixture(t)
	token := f.signToken(t, validClaims())

	claims, err := f.client.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "kc-user-123", claims.Subject)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, "jo", claims.PreferredUsername)
	assert.Equal(t, "Jo", claims.GivenName)
	assert.Equal(t, "Doe", claims.FamilyName)
}

func TestVerifyTokenExpired(t *testing.T) {
	f := newKeycloakFixture(t)
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := f.client.VerifyToken(context.Background(), f.signToken(t, claims))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenWrongAudience(t *testing.T) {
	f := newKeycloakFixture(t)
	claims := validClaims()
	claims.Audience = jwt.ClaimStrings{"some-other-client"}

	_, err := f.client.VerifyToken(context.Background(), f.signToken(t, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	f := newKeycloakFixture(t)
	claims := validClaims()
	claims.Subject = ""

	_, err := f.client.VerifyToken(context.Background(), f.signToken(t, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongSignature(t *testing.T) {
	f := newKeycloakFixture(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims())
	signed, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = f.client.VerifyToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsNonRS256(t *testing.T) {
	f := newKeycloakFixture(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	signed, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = f.client.VerifyToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	f := newKeycloakFixture(t)

	_, err := f.client.VerifyToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRealmPublicKeyCached(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(map[string]string{
			"public_key": base64.StdEncoding.EncodeToString(der),
		})
	}))
	defer server.Close()

	client := NewKeycloakClient(server.URL, testRealm, testClientID)
	f := &keycloakFixture{key: key, client: client}

	for i := 0; i < 3; i++ {
		_, err := client.VerifyToken(context.Background(), f.signToken(t, validClaims()))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, hits)
}
