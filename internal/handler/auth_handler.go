package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"planboard/internal/auth"
	"planboard/internal/identity"
	"planboard/internal/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Error codes understood by the /auth/error page.
const (
	ErrorAccessDenied          = "AccessDenied"
	ErrorEmailOrUsernameExists = "EmailOrUsernameExists"
)

// IdentityResolver turns provider profiles into sessions and keeps sessions current.
type IdentityResolver interface {
	SignIn(ctx context.Context, p identity.Profile) (identity.Session, error)
	Refresh(ctx context.Context, s identity.Session) (identity.Session, error)
}

type AuthHandler struct {
	providers    auth.Providers
	states       auth.StateStore
	resolver     IdentityResolver
	tokens       *auth.TokenManager
	cookieSecure bool
}

func NewAuthHandler(providers auth.Providers, states auth.StateStore, resolver IdentityResolver, tokens *auth.TokenManager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		providers:    providers,
		states:       states,
		resolver:     resolver,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

// SessionResponse is returned by the session and refresh endpoints.
type SessionResponse struct {
	User  identity.Session `json:"user"`
	Token string           `json:"token"`
}

type providerLink struct {
	Name string
	URL  string
}

// SignInPage lists the configured providers.
func (h *AuthHandler) SignInPage(c *gin.Context) {
	var links []providerLink
	for _, p := range h.providers.Configured() {
		links = append(links, providerLink{Name: p.DisplayName(), URL: "/auth/" + string(p) + "/login"})
	}
	c.HTML(http.StatusOK, "signin.html", gin.H{
		"Title":     "Zaloguj się",
		"Providers": links,
		"User":      middleware.Session(c),
	})
}

// Login redirects the browser to the provider with a fresh state value.
func (h *AuthHandler) Login(c *gin.Context) {
	provider, err := h.providers.Get(c.Param("provider"))
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}
	state, err := h.states.Issue(c.Request.Context(), string(provider.Kind))
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}
	c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// Callback completes the code flow, resolves the local author and starts the session.
func (h *AuthHandler) Callback(c *gin.Context) {
	provider, err := h.providers.Get(c.Param("provider"))
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}
	if denied := c.Query("error"); denied != "" {
		h.fail(c, ErrorAccessDenied, errors.New("provider returned "+denied))
		return
	}

	ctx := c.Request.Context()
	ok, err := h.states.Consume(ctx, c.Query("state"), string(provider.Kind))
	if err != nil || !ok {
		h.fail(c, ErrorAccessDenied, errors.New("invalid oauth state"))
		return
	}

	profile, err := provider.Profile(ctx, c.Query("code"))
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}

	session, err := h.resolver.SignIn(ctx, profile)
	if errors.Is(err, identity.ErrIdentityConflict) {
		h.fail(c, ErrorEmailOrUsernameExists, err)
		return
	}
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		h.fail(c, ErrorAccessDenied, err)
		return
	}
	middleware.SetSessionCookie(c, token, h.tokens.Expiry(), h.cookieSecure)
	middleware.Logger(c).WithFields(log.Fields{
		"provider": provider.Kind,
		"username": session.Username,
	}).Info("signed in")
	c.Redirect(http.StatusFound, "/plan")
}

// Refresh godoc
// @Summary      Rebuild the session token from the stored author
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	h.reissue(c)
}

// Session godoc
// @Summary      Current session and a token for API clients
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	h.reissue(c)
}

// reissue signs a fresh token for the re-resolved author.
func (h *AuthHandler) reissue(c *gin.Context) {
	session, err := h.resolver.Refresh(c.Request.Context(), middleware.Session(c))
	if errors.Is(err, identity.ErrSessionRevoked) {
		middleware.ClearSessionCookie(c, h.cookieSecure)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session revoked"})
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Error("refresh session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh session"})
		return
	}
	h.respondWithToken(c, session)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, session identity.Session) {
	token, err := h.tokens.Issue(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	if _, err := c.Cookie(middleware.SessionCookie); err == nil {
		middleware.SetSessionCookie(c, token, h.tokens.Expiry(), h.cookieSecure)
	}
	c.JSON(http.StatusOK, SessionResponse{User: session, Token: token})
}

// SignOut clears the session cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.cookieSecure)
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, SuccessResponse{Success: true})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ErrorPage renders the sign-in failure page.
func (h *AuthHandler) ErrorPage(c *gin.Context) {
	code := c.Query("error")
	message := "Logowanie nie powiodło się. Spróbuj ponownie."
	if code == ErrorEmailOrUsernameExists {
		message = "Konto z tym adresem e-mail lub nazwą użytkownika już istnieje u innego dostawcy."
	}
	c.HTML(http.StatusForbidden, "error.html", gin.H{
		"Title":   "Błąd logowania",
		"User":    middleware.Session(c),
		"Code":    code,
		"Message": message,
	})
}

func (h *AuthHandler) fail(c *gin.Context, code string, err error) {
	middleware.Logger(c).WithError(err).WithField("error_code", code).Warn("sign-in failed")
	c.Redirect(http.StatusFound, "/auth/error?error="+url.QueryEscape(code))
}
