package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"planboard/internal/auth"
	"planboard/internal/identity"
)

const (
	UsernameKey = "username"
	RoleKey     = "role"

	// SessionCookie holds the session token for browser clients.
	SessionCookie = "planboard_session"
	// RefreshedTokenHeader carries a reissued token back to bearer clients.
	RefreshedTokenHeader = "X-Session-Token"
)

// Refresher rebuilds a session from the author store.
type Refresher interface {
	Refresh(ctx context.Context, s identity.Session) (identity.Session, error)
}

type AuthOptions struct {
	Refresher    Refresher
	RefreshAfter time.Duration
	// Redirect, when set, sends unauthenticated browsers there instead of answering 401.
	Redirect     string
	CookieSecure bool
}

// JWTAuthMiddleware authenticates the request from a Bearer header or the session cookie.
func JWTAuthMiddleware(tokens *auth.TokenManager, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, fromCookie, msg := extractToken(c)
		if msg != "" {
			reject(c, opts, msg)
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if errors.Is(err, auth.ErrInvalidClaims) {
			reject(c, opts, "Invalid username in token")
			return
		}
		if err != nil {
			reject(c, opts, "Invalid or expired token")
			return
		}

		session := claims.Session()
		if opts.Refresher != nil && opts.RefreshAfter > 0 && claims.IssuedAge(time.Now()) >= opts.RefreshAfter {
			refreshed, err := opts.Refresher.Refresh(c.Request.Context(), session)
			switch {
			case errors.Is(err, identity.ErrSessionRevoked):
				ClearSessionCookie(c, opts.CookieSecure)
				reject(c, opts, "Session revoked")
				return
			case err != nil:
				log.WithError(err).WithField("username", session.Username).Warn("session refresh failed, keeping token")
			default:
				session = refreshed
				if token, err := tokens.Issue(session); err == nil {
					if fromCookie {
						SetSessionCookie(c, token, tokens.Expiry(), opts.CookieSecure)
					} else {
						c.Header(RefreshedTokenHeader, token)
					}
				}
			}
		}

		c.Set(UsernameKey, session.Username)
		c.Set(RoleKey, session.Role)
		c.Next()
	}
}

// OptionalSession sets the session keys when a valid token is present and never rejects.
func OptionalSession(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _, msg := extractToken(c)
		if msg == "" {
			if claims, err := tokens.Parse(tokenStr); err == nil {
				c.Set(UsernameKey, claims.Username)
				c.Set(RoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (token string, fromCookie bool, problem string) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false, "Authorization header format must be Bearer {token}"
		}
		return parts[1], false, ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true, ""
	}
	return "", false, "Authorization header is required"
}

func reject(c *gin.Context, opts AuthOptions, msg string) {
	if opts.Redirect != "" {
		c.Redirect(http.StatusFound, opts.Redirect)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Username returns the authenticated username, or "" outside an authenticated route.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

func Session(c *gin.Context) identity.Session {
	return identity.Session{Role: c.GetString(RoleKey), Username: c.GetString(UsernameKey)}
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
