// Package server provides the HTTP server exposing the REST API
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	"github.com/zerowastechef/server/internal/infrastructure/http/handlers"
	"github.com/zerowastechef/server/internal/infrastructure/http/middleware"
	"github.com/zerowastechef/server/internal/infrastructure/monitoring"
	"github.com/zerowastechef/server/internal/infrastructure/security"
	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/pkg/healthcheck"
)

// Dependencies groups the services served over HTTP
type Dependencies struct {
	Users   inbound.IdentityService
	Recipes inbound.RecipeService
	Pantry  inbound.PantryService
	Tokens  *security.TokenService
	Roles   security.RoleReader
	Health  *healthcheck.HealthCheck
	// Metrics is optional; /metrics is only mounted when it is set
	Metrics *monitoring.Metrics
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	server *http.Server
	deps   Dependencies
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http-server"),
		deps:   deps,
	}

	s.router = s.setupRouter()

	var handler http.Handler = s.router
	if cfg.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout})
	}

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		s.logger.Warn("Ignoring invalid trusted proxies", zap.Error(err))
	}

	m := middleware.New(s.config, s.logger)

	// Global middleware
	r.Use(m.RequestID())
	r.Use(m.Logger())
	r.Use(m.Recovery())
	r.Use(m.Tracing())
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware())
	}
	r.Use(m.Security())
	r.Use(m.CORS())
	r.Use(m.Compression())
	r.Use(m.ErrorHandler())

	// Health and metrics
	monitoringCfg := s.config.Monitoring
	r.GET(monitoringCfg.HealthCheckPath, s.deps.Health.Handler())
	r.GET(monitoringCfg.HealthCheckPath+"/live", s.deps.Health.LivenessHandler())
	r.GET(monitoringCfg.ReadinessPath, s.deps.Health.ReadinessHandler())
	if monitoringCfg.EnableMetrics && s.deps.Metrics != nil {
		r.GET(monitoringCfg.MetricsPath, gin.WrapH(s.deps.Metrics.Handler()))
	}

	// Uploaded images
	if s.config.Storage.Provider == "local" {
		r.Static(s.config.Storage.URLPrefix, s.config.Storage.LocalPath)
	}

	s.setupAPIRoutes(r.Group("/api"), m)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.MessageResponse{Message: "Not found"})
	})

	return r
}

// setupAPIRoutes configures REST API routes
func (s *Server) setupAPIRoutes(api *gin.RouterGroup, m *middleware.Middleware) {
	auth := handlers.NewAuthAPIHandlers(s.deps.Users, s.logger)
	recipes := handlers.NewRecipeAPIHandlers(s.deps.Recipes, s.config, s.logger)
	pantry := handlers.NewPantryAPIHandlers(s.deps.Pantry)

	authenticated := s.deps.Tokens.Authenticate(s.logger)
	admin := security.RequireAdmin(s.deps.Roles, s.logger)
	uploads := m.BodyLimit(s.config.Server.MaxMultipartBytes)

	// Accounts
	accounts := api.Group("/auth", m.RateLimit())
	{
		accounts.POST("/register", auth.Register)
		accounts.POST("/login", auth.Login)
		accounts.POST("/forgot-password", auth.ForgotPassword)
		accounts.POST("/reset-password", auth.ResetPassword)
		accounts.POST("/check-duplicates", auth.CheckDuplicates)
	}

	api.GET("/user", authenticated, auth.Profile)
	api.GET("/user/activities", authenticated, auth.Activities)
	api.GET("/all-activities", authenticated, admin, auth.AllActivities)
	api.GET("/users", authenticated, admin, auth.ListUsers)
	api.DELETE("/users/:id", authenticated, admin, auth.DeleteUser)

	// Recipe CRUD
	api.GET("/recipes", recipes.ListRecipes)
	api.POST("/recipes", authenticated, uploads, recipes.CreateRecipe)
	api.PUT("/recipes/:id", authenticated, admin, uploads, recipes.UpdateRecipe)
	api.DELETE("/recipes/:id", authenticated, admin, recipes.DeleteRecipe)
	api.GET("/suggested-recipes", authenticated, recipes.SuggestRecipes)

	// Comments
	api.GET("/comments/:recipeId", recipes.ListComments)
	api.POST("/comments", authenticated, recipes.AddComment)

	// Votes
	api.POST("/likes", authenticated, recipes.Vote)
	api.GET("/likes/count/:recipeId", recipes.CountVotes)
	api.GET("/likes/:recipeId", authenticated, recipes.GetVote)

	// Pantry
	api.GET("/ingredients", authenticated, pantry.ListIngredients)
	api.POST("/ingredients", authenticated, pantry.AddIngredient)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listen address and serves in the background. Bind
// errors are returned; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting HTTP server",
		zap.String("address", listener.Addr().String()),
		zap.String("environment", s.config.App.Environment),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
