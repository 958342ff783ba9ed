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

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/activity"
	activityrouter "github.com/masar-hq/masar/engine/activity/router"
	"github.com/masar-hq/masar/engine/analytics"
	analyticsrouter "github.com/masar-hq/masar/engine/analytics/router"
	"github.com/masar-hq/masar/engine/auth"
	authrouter "github.com/masar-hq/masar/engine/auth/router"
	"github.com/masar-hq/masar/engine/calendar"
	"github.com/masar-hq/masar/engine/constraint"
	constraintrouter "github.com/masar-hq/masar/engine/constraint/router"
	"github.com/masar-hq/masar/engine/depgraph"
	depgraphrouter "github.com/masar-hq/masar/engine/depgraph/router"
	"github.com/masar-hq/masar/engine/infra/postgres"
	"github.com/masar-hq/masar/engine/org"
	orgrouter "github.com/masar-hq/masar/engine/org/router"
	"github.com/masar-hq/masar/engine/project"
	projectrouter "github.com/masar-hq/masar/engine/project/router"
	"github.com/masar-hq/masar/engine/schedule"
	schedulerouter "github.com/masar-hq/masar/engine/schedule/router"
	"github.com/masar-hq/masar/engine/status"
	statusrouter "github.com/masar-hq/masar/engine/status/router"
	"github.com/masar-hq/masar/engine/task"
	taskrouter "github.com/masar-hq/masar/engine/task/router"
	"github.com/masar-hq/masar/pkg/config"
	"github.com/masar-hq/masar/pkg/logger"
)

// Server owns the HTTP lifecycle and the service graph behind it.
type Server struct {
	cfg    *config.Config
	log    logger.Logger
	store  *postgres.Store
	router *gin.Engine
}

// New creates a server from configuration
func New(cfg *config.Config, log logger.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	ctx = logger.ContextWithLogger(config.ContextWithConfig(ctx, s.cfg), s.log)
	if s.cfg.Database.AutoMigrate {
		if err := postgres.ApplyMigrations(ctx, s.cfg.Database.URL); err != nil {
			return err
		}
	}
	store, err := postgres.NewStore(ctx, &s.cfg.Database)
	if err != nil {
		return err
	}
	s.store = store
	defer store.Close(ctx)
	s.router = s.buildRouter()
	return s.serve(ctx)
}

// buildRouter wires repositories, services, and routes.
func (s *Server) buildRouter() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	provider := postgres.NewProvider(s.store.Pool())

	calendars := calendar.NewService(provider.Orgs())
	orgs := org.NewService(provider.Orgs(), calendars)
	projects := project.NewService(provider.Projects())
	activities := activity.NewService(provider.Activities())
	tasks := task.NewService(provider.Tasks())
	deps := depgraph.NewService(provider.Dependencies(), provider.Activities(), provider.Tasks())
	constraints := constraint.NewService(
		provider.Constraints(), provider.Dependencies(),
		provider.Activities(), provider.Tasks(), calendars)
	scheduler := schedule.NewService(
		provider.Projects(), provider.Activities(), provider.Tasks(),
		provider.Dependencies(), calendars)
	statuses := status.NewService(
		provider.Projects(), provider.Activities(), provider.Tasks(), calendars)
	analyticsSvc := analytics.NewService(provider.Analytics(), provider.Projects(), scheduler)

	issuer := auth.NewTokenIssuer(s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	authSvc := auth.NewService(provider.Users(), provider.RefreshTokens(), issuer, s.cfg.Auth.RefreshTokenTTL)
	middleware := auth.NewMiddleware(issuer, provider.Users())

	engine := gin.New()
	engine.Use(gin.Recovery(), loggerMiddleware(s.log))
	if s.cfg.Server.CORSOrigin != "" {
		engine.Use(corsMiddleware(s.cfg.Server.CORSOrigin))
	}
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiBase := engine.Group("/api")
	authrouter.RegisterRoutes(apiBase, authSvc, middleware)

	protected := apiBase.Group("")
	protected.Use(middleware.Authenticate())
	orgrouter.RegisterRoutes(protected, orgs)
	projectrouter.RegisterRoutes(protected, projects)
	activityrouter.RegisterRoutes(protected, activities, projects)
	taskrouter.RegisterRoutes(protected, tasks, activities, projects)
	depgraphrouter.RegisterRoutes(protected, deps)
	constraintrouter.RegisterRoutes(protected, constraints)
	statusrouter.RegisterRoutes(protected, statuses)
	schedulerouter.RegisterRoutes(protected, scheduler)
	analyticsrouter.RegisterRoutes(protected, analyticsSvc)
	return engine
}

func (s *Server) serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "address", fmt.Sprintf("http://%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	case sig := <-quit:
		s.log.Info("Shutdown signal received", "signal", sig)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}
