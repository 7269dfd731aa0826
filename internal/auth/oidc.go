package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	azureJWKSURL  = "https://login.microsoftonline.com/%s/discovery/v2.0/keys"
)

var GoogleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

func AzureADJWKSURL(tenant string) string {
	return fmt.Sprintf(azureJWKSURL, tenant)
}

// AzureADIssuers returns the accepted issuer for a single-tenant app. Multi-tenant
// aliases have per-tenant issuers and skip the check.
func AzureADIssuers(tenant string) []string {
	switch tenant {
	case "", "common", "organizations", "consumers":
		return nil
	}
	return []string{fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", tenant)}
}

// KeySource resolves the verification key for a token. *keyfunc.JWKS satisfies it.
type KeySource interface {
	Keyfunc(token *jwt.Token) (interface{}, error)
}

// LoadJWKS fetches a provider key set and keeps it refreshed in the background.
func LoadJWKS(url string) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.WithError(err).WithField("jwks", url).Warn("jwks refresh failed")
		},
	})
}

// IDTokenVerifier checks provider id_tokens and returns their claims.
type IDTokenVerifier struct {
	keys     KeySource
	audience string
	issuers  []string
	parser   *jwt.Parser
}

func NewIDTokenVerifier(keys KeySource, audience string, issuers []string, methods ...string) *IDTokenVerifier {
	if len(methods) == 0 {
		methods = []string{"RS256"}
	}
	return &IDTokenVerifier{
		keys:     keys,
		audience: audience,
		issuers:  issuers,
		parser:   jwt.NewParser(jwt.WithValidMethods(methods)),
	}
}

func (v *IDTokenVerifier) Verify(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, errors.New("missing id_token")
	}
	token, err := v.parser.Parse(raw, v.keys.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("parse id_token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, errors.New("invalid audience")
	}
	if len(v.issuers) > 0 {
		matched := false
		for _, iss := range v.issuers {
			if claims.VerifyIssuer(iss, true) {
				matched = true
				break
			}
		}
		if !matched {
			return nil, errors.New("invalid issuer")
		}
	}
	return claims, nil
}
