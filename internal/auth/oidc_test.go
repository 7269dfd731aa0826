package auth_test

import (
	"testing"
	"time"

	"planboard/internal/auth"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKey []byte

func (k staticKey) Keyfunc(*jwtv4.Token) (interface{}, error) {
	return []byte(k), nil
}

const oidcKey = "oidc-test-key"

func signIDToken(t *testing.T, claims jwtv4.MapClaims) string {
	t.Helper()
	token, err := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims).SignedString([]byte(oidcKey))
	require.NoError(t, err)
	return token
}

func TestIDTokenVerifier_Verify(t *testing.T) {
	// Arrange
	verifier := auth.NewIDTokenVerifier(staticKey(oidcKey), "client-1", auth.GoogleIssuers, "HS256")
	raw := signIDToken(t, jwtv4.MapClaims{
		"sub":   "1098",
		"aud":   "client-1",
		"iss":   "https://accounts.google.com",
		"email": "jan@gmail.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	// Act
	claims, err := verifier.Verify(raw)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "1098", claims["sub"])
	assert.Equal(t, "jan@gmail.com", claims["email"])
}

func TestIDTokenVerifier_RejectsForeignAudienceAndIssuer(t *testing.T) {
	verifier := auth.NewIDTokenVerifier(staticKey(oidcKey), "client-1", auth.GoogleIssuers, "HS256")
	exp := time.Now().Add(time.Hour).Unix()

	_, audErr := verifier.Verify(signIDToken(t, jwtv4.MapClaims{"aud": "other", "iss": "accounts.google.com", "exp": exp}))
	_, issErr := verifier.Verify(signIDToken(t, jwtv4.MapClaims{"aud": "client-1", "iss": "https://evil.example", "exp": exp}))
	_, emptyErr := verifier.Verify("")

	assert.Error(t, audErr)
	assert.Error(t, issErr)
	assert.Error(t, emptyErr)
}

func TestIDTokenVerifier_DefaultsToRS256(t *testing.T) {
	verifier := auth.NewIDTokenVerifier(staticKey(oidcKey), "client-1", nil)
	raw := signIDToken(t, jwtv4.MapClaims{"aud": "client-1", "exp": time.Now().Add(time.Hour).Unix()})

	_, err := verifier.Verify(raw)

	assert.Error(t, err)
}

func TestAzureADIssuers(t *testing.T) {
	assert.Nil(t, auth.AzureADIssuers("common"))
	assert.Equal(t, []string{"https://login.microsoftonline.com/contoso/v2.0"}, auth.AzureADIssuers("contoso"))
	assert.Equal(t, "https://login.microsoftonline.com/contoso/discovery/v2.0/keys", auth.AzureADJWKSURL("contoso"))
}
