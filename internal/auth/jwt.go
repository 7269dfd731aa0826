package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"planboard/internal/identity"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Claims is the whole session token: role, username and the registered time claims.
type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() identity.Session {
	return identity.Session{Role: c.Role, Username: c.Username}
}

// IssuedAge reports how long ago the token was issued.
func (c *Claims) IssuedAge(now time.Time) time.Duration {
	if c.IssuedAt == nil {
		return 0
	}
	return now.Sub(c.IssuedAt.Time)
}

type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Issue signs a fresh token for s. Tokens are always rebuilt from the session,
// never patched, so no other claim can carry over.
func (m *TokenManager) Issue(s identity.Session) (string, error) {
	now := m.now()
	claims := Claims{
		Role:     s.Role,
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Expiry is the lifetime given to issued tokens.
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}
