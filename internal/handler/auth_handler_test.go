package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"planboard/internal/auth"
	"planboard/internal/handler"
	"planboard/internal/identity"
	"planboard/internal/middleware"
	"planboard/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) SignIn(ctx context.Context, p identity.Profile) (identity.Session, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(identity.Session), args.Error(1)
}

func (m *MockResolver) Refresh(ctx context.Context, s identity.Session) (identity.Session, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(identity.Session), args.Error(1)
}

type authFixture struct {
	router   *gin.Engine
	resolver *MockResolver
	states   *auth.MemoryStateStore
	tokens   *auth.TokenManager
}

func githubStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "login": "alice", "email": "alice@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupAuthRouter(t *testing.T) authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := githubStub(t)

	github := auth.NewGitHubProvider("gh-id", "gh-secret", "http://localhost/auth/github/callback", srv.URL)
	github.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/authorize",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}

	f := authFixture{
		resolver: new(MockResolver),
		states:   auth.NewMemoryStateStore(time.Minute),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}
	h := handler.NewAuthHandler(auth.Providers{identity.GitHub: github}, f.states, f.resolver, f.tokens, false)

	r := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.GET("/auth/signin", h.SignInPage)
	r.GET("/auth/error", h.ErrorPage)
	r.GET("/auth/:provider/login", h.Login)
	r.GET("/auth/:provider/callback", h.Callback)
	session := r.Group("/auth", middleware.JWTAuthMiddleware(f.tokens, middleware.AuthOptions{}))
	session.POST("/refresh", h.Refresh)
	session.GET("/session", h.Session)
	r.POST("/auth/signout", h.SignOut)
	f.router = r
	return f
}

func TestAuthLogin_RedirectsWithState(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/github/login", nil)
	f.router.ServeHTTP(resp, req)

	// Assert
	require.Equal(t, http.StatusFound, resp.Code)
	location, err := url.Parse(resp.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/authorize", location.Path)
	assert.NotEmpty(t, location.Query().Get("state"))
}

func TestAuthCallback_SignsIn(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)
	state, _ := f.states.Issue(context.Background(), "github")
	f.resolver.On("SignIn", mock.Anything, mock.MatchedBy(func(p identity.Profile) bool {
		return p.ID == "42" && p.Username == "alice" && p.Provider == identity.GitHub
	})).Return(identity.Session{Role: "GithubUser", Username: "alice"}, nil)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/github/callback?code=c1&state="+state, nil)
	f.router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/plan", resp.Header().Get("Location"))
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	claims, err := f.tokens.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthCallback_ConflictRedirect(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)
	state, _ := f.states.Issue(context.Background(), "github")
	f.resolver.On("SignIn", mock.Anything, mock.Anything).Return(identity.Session{}, identity.ErrIdentityConflict)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/github/callback?code=c1&state="+state, nil)
	f.router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/auth/error?error=EmailOrUsernameExists", resp.Header().Get("Location"))
	assert.Empty(t, resp.Result().Cookies())
}

func TestAuthCallback_InvalidStateIsDenied(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/github/callback?code=c1&state=forged", nil)
	f.router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, "/auth/error?error=AccessDenied", resp.Header().Get("Location"))
	f.resolver.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
}

func TestAuthRefresh_RebuildsToken(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)
	token, _ := f.tokens.Issue(identity.Session{Role: "GithubUser", Username: "alice"})
	f.resolver.On("Refresh", mock.Anything, identity.Session{Role: "GithubUser", Username: "alice"}).
		Return(identity.Session{Role: "guy", Username: "alice"}, nil)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	f.router.ServeHTTP(resp, req)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, identity.Session{Role: "guy", Username: "alice"}, body.User)
	claims, err := f.tokens.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "guy", claims.Role)
}

func TestAuthRefresh_VanishedUser(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)
	token, _ := f.tokens.Issue(identity.Session{Username: "ghost"})
	f.resolver.On("Refresh", mock.Anything, mock.Anything).Return(identity.Session{}, identity.ErrSessionRevoked)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	f.router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Header().Get("Set-Cookie"), middleware.SessionCookie+"=;")
}

func TestAuthSession(t *testing.T) {
	f := setupAuthRouter(t)
	token, _ := f.tokens.Issue(identity.Session{Role: "GoogleUser", Username: "jan"})
	f.resolver.On("Refresh", mock.Anything, identity.Session{Role: "GoogleUser", Username: "jan"}).
		Return(identity.Session{Role: "GoogleUser", Username: "jan"}, nil)

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"user":{"role":"GoogleUser","username":"jan"}`)
}

func TestAuthSession_VanishedUser(t *testing.T) {
	// Arrange
	f := setupAuthRouter(t)
	token, _ := f.tokens.Issue(identity.Session{Role: "GithubUser", Username: "ghost"})
	f.resolver.On("Refresh", mock.Anything, identity.Session{Role: "GithubUser", Username: "ghost"}).
		Return(identity.Session{}, identity.ErrSessionRevoked)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	f.router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.NotContains(t, resp.Body.String(), "token")
	f.resolver.AssertCalled(t, "Refresh", mock.Anything, identity.Session{Role: "GithubUser", Username: "ghost"})
}

func TestAuthErrorPage(t *testing.T) {
	f := setupAuthRouter(t)

	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/auth/error?error=EmailOrUsernameExists", nil)
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "EmailOrUsernameExists")
}
