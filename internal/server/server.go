package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planboard/internal/auth"
	"planboard/internal/config"
	"planboard/internal/handler"
	"planboard/internal/identity"
	"planboard/internal/middleware"
	"planboard/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const stateTTL = 10 * time.Minute

type Server struct {
	Engine *gin.Engine
	Config *config.Config

	closers []func(context.Context) error
}

// Init opens the configured store, builds the sign-in providers and registers every route.
func Init(cfg *config.Config) (*Server, error) {
	ctx := context.Background()
	s := &Server{Config: cfg}

	stores, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, closeStore)

	states, err := s.stateStore(ctx)
	if err != nil {
		s.close(ctx)
		return nil, err
	}

	providers, err := buildProviders(cfg)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	if len(providers) == 0 {
		log.Warn("no sign-in provider configured; only existing tokens will be accepted")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	resolver := identity.NewResolver(stores.authors)

	tmpl, err := web.Templates()
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(log.StandardLogger()), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	taskHandler := handler.NewTaskHandler(stores.tasks, stores.boards)
	boardHandler := handler.NewBoardHandler(stores.boards, stores.tasks)
	cardHandler := handler.NewCardHandler(stores.cards, stores.boards)
	authHandler := handler.NewAuthHandler(providers, states, resolver, tokens, cfg.CookieSecure)
	pageHandler := handler.NewPageHandler(stores.boards, stores.tasks)

	refreshing := middleware.AuthOptions{
		Refresher:    resolver,
		RefreshAfter: cfg.SessionRefreshAfter,
		CookieSecure: cfg.CookieSecure,
	}

	api := r.Group("/api", middleware.JWTAuthMiddleware(tokens, refreshing))
	{
		api.POST("/tasks", taskHandler.Create)
		api.PATCH("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Delete)
		if cfg.ExposeTaskDump {
			api.GET("/tasks", taskHandler.GetAll)
		}

		api.POST("/boards", boardHandler.Create)
		api.GET("/boards", boardHandler.GetAll)
		api.GET("/boards/:id", boardHandler.GetByID)
		api.DELETE("/boards/:id", boardHandler.Delete)
		api.GET("/boards/:id/tasks", taskHandler.GetByBoard)

		api.POST("/boards/:id/cards", cardHandler.Create)
		api.GET("/boards/:id/cards", cardHandler.GetByBoard)
		api.PATCH("/cards/:id", cardHandler.Update)
		api.DELETE("/cards/:id", cardHandler.Delete)
	}

	public := r.Group("/", middleware.OptionalSession(tokens))
	{
		public.GET("/", pageHandler.Home)
		public.GET("/auth/signin", authHandler.SignInPage)
		public.GET("/auth/error", authHandler.ErrorPage)
		public.GET("/auth/:provider/login", authHandler.Login)
		public.GET("/auth/:provider/callback", authHandler.Callback)
		public.POST("/auth/signout", authHandler.SignOut)
	}

	// refresh and session rebuild the token themselves
	session := r.Group("/auth", middleware.JWTAuthMiddleware(tokens, middleware.AuthOptions{CookieSecure: cfg.CookieSecure}))
	{
		session.POST("/refresh", authHandler.Refresh)
		session.GET("/session", authHandler.Session)
	}

	pages := r.Group("/plan", middleware.JWTAuthMiddleware(tokens, middleware.AuthOptions{
		Refresher:    resolver,
		RefreshAfter: cfg.SessionRefreshAfter,
		Redirect:     "/auth/signin",
		CookieSecure: cfg.CookieSecure,
	}))
	{
		pages.GET("", pageHandler.Plans)
		pages.POST("", pageHandler.CreateBoard)
		pages.GET("/create", pageHandler.CreateBoard)
		pages.POST("/delete", pageHandler.DeleteBoard)
		pages.GET("/:id", pageHandler.Board)
		pages.POST("/:id/tasks", pageHandler.CreateTask)
		pages.POST("/:id/tasks/:taskId/move", pageHandler.MoveTask)
		pages.POST("/:id/tasks/:taskId/edit", pageHandler.EditTask)
		pages.POST("/:id/tasks/:taskId/delete", pageHandler.DeleteTask)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.NoRoute(middleware.OptionalSession(tokens), pageHandler.NotFound)

	s.Engine = r
	return s, nil
}

// stateStore keeps OAuth state in Redis when REDIS_URL is set, in process memory otherwise.
func (s *Server) stateStore(ctx context.Context) (auth.StateStore, error) {
	if s.Config.RedisURL == "" {
		log.Info("REDIS_URL not set, keeping oauth state in memory")
		return auth.NewMemoryStateStore(stateTTL), nil
	}
	opts, err := redis.ParseURL(s.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return client.Close() })
	log.WithField("addr", opts.Addr).Info("connected to redis")
	return auth.NewRedisStateStore(client, stateTTL), nil
}

func buildProviders(cfg *config.Config) (auth.Providers, error) {
	providers := auth.Providers{}
	callback := func(p identity.Provider) string {
		return cfg.BaseURL + "/auth/" + string(p) + "/callback"
	}

	if cfg.GitHub.Enabled() {
		providers[identity.GitHub] = auth.NewGitHubProvider(cfg.GitHub.ID, cfg.GitHub.Secret, callback(identity.GitHub), "")
	}
	if cfg.Google.Enabled() {
		keys, err := auth.LoadJWKS(auth.GoogleJWKSURL)
		if err != nil {
			return nil, fmt.Errorf("google jwks: %w", err)
		}
		verifier := auth.NewIDTokenVerifier(keys, cfg.Google.ID, auth.GoogleIssuers)
		providers[identity.Google] = auth.NewGoogleProvider(cfg.Google.ID, cfg.Google.Secret, callback(identity.Google), verifier)
	}
	if cfg.AzureAD.Enabled() {
		tenant := cfg.AzureAD.Tenant
		keys, err := auth.LoadJWKS(auth.AzureADJWKSURL(tenant))
		if err != nil {
			return nil, fmt.Errorf("azure ad jwks: %w", err)
		}
		verifier := auth.NewIDTokenVerifier(keys, cfg.AzureAD.ID, auth.AzureADIssuers(tenant))
		providers[identity.AzureAD] = auth.NewAzureADProvider(cfg.AzureAD.ID, cfg.AzureAD.Secret, tenant, callback(identity.AzureAD), verifier)
	}
	for name := range providers {
		log.WithField("provider", name).Info("sign-in provider enabled")
	}
	return providers, nil
}

func (s *Server) close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.WithError(err).Warn("close resource")
		}
	}
	s.closers = nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	s.close(ctx)

	log.Info("✅ Server exited properly")
}
