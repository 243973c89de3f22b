// internal/auth/keycloak.go
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims are the identity-provider claims this service consumes.
type Claims struct {
	jwt.RegisteredClaims
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
}

// KeycloakClient verifies bearer tokens against a Keycloak realm. The realm's
// RSA public key is fetched once and cached for the process lifetime.
type KeycloakClient struct {
	baseURL  string
	realm    string
	clientID string
	http     *http.Client

	mu        sync.Mutex
	publicKey *rsa.PublicKey
}

func NewKeycloakClient(baseURL, realm, clientID string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:  baseURL,
		realm:    realm,
		clientID: clientID,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyToken validates signature (RS256 only), expiry and audience, and
// returns the token's claims.
func (k *KeycloakClient) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	key, err := k.realmPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch realm public key: %w", err)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if !audienceContains(claims.Audience, k.clientID) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

// realmPublicKey fetches the realm descriptor and parses its RSA public key.
// Keycloak serves the key as base64 DER without PEM armor.
func (k *KeycloakClient) realmPublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.publicKey != nil {
		return k.publicKey, nil
	}

	url := fmt.Sprintf("%s/realms/%s", k.baseURL, k.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keycloak realm endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var realm struct {
		PublicKey string `json:"public_key"`
	}
	if err := json.Unmarshal(body, &realm); err != nil {
		return nil, err
	}
	if realm.PublicKey == "" {
		return nil, errors.New("realm descriptor has no public key")
	}

	pem := "-----BEGIN PUBLIC KEY-----\n" + realm.PublicKey + "\n-----END PUBLIC KEY-----"
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("parse realm public key: %w", err)
	}

	k.publicKey = key
	return key, nil
}
