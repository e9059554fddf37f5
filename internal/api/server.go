// Package api wires the HTTP surface: router, middleware and handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/pos-sync-backend/internal/api/handlers"
	"github.com/platewise/pos-sync-backend/internal/api/middleware"
	"github.com/platewise/pos-sync-backend/internal/application/connect"
	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
	"github.com/platewise/pos-sync-backend/internal/application/token"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/config"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     *slog.Logger
}

// Deps carries everything the server needs.
type Deps struct {
	Config       *config.Config
	Registry     *pos.Registry
	Repo         storage.Repository
	Connector    *connect.Connector
	Refresher    *token.Refresher
	Orchestrator *appsync.Orchestrator
	Logger       *slog.Logger
}

// NewServer creates and wires a server.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		router: chi.NewRouter(),
		logger: deps.Logger,
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(deps.Config.Server.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = deps.Config.Server.AllowedOrigins
	}
	s.router.Use(middleware.Logging(deps.Logger))
	s.router.Use(middleware.CORS(corsCfg))

	healthHandler := handlers.NewHealthHandler(deps.Logger)
	providersHandler := handlers.NewProvidersHandler(deps.Registry, deps.Connector, deps.Logger)
	connectionsHandler := handlers.NewConnectionsHandler(deps.Connector, deps.Refresher, deps.Repo, deps.Logger)
	webhookHandler := handlers.NewWebhookHandler(deps.Registry, deps.Logger)

	syncOpts := appsync.Options{
		LookbackDays: deps.Config.Sync.LookbackDays,
		MinInterval:  time.Duration(deps.Config.Sync.MinIntervalHours) * time.Hour,
	}
	syncHandler := handlers.NewSyncHandler(deps.Orchestrator, syncOpts, deps.Logger)

	s.router.Get("/health", healthHandler.Health)

	// Webhooks authenticate with vendor signatures, not user tokens.
	s.router.Post("/api/webhooks/{provider}", webhookHandler.Receive)

	// Service-to-service batch sync (cron).
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.ServiceToken(deps.Config.Server.ServiceToken))
		r.Post("/api/sync/all", syncHandler.SyncAll)
	})

	// User-facing routes.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.Server.JWTSecret))

		r.Get("/api/providers", providersHandler.List)
		r.Get("/api/connect/{provider}/url", providersHandler.AuthURL)
		r.Post("/api/connect/{provider}", connectionsHandler.Connect)
		r.Get("/api/connections", connectionsHandler.List)
		r.Post("/api/connections/{provider}/refresh", connectionsHandler.Refresh)
		r.Delete("/api/connections/{provider}", connectionsHandler.Disconnect)
		r.Post("/api/test-connection", connectionsHandler.TestConnection)
		r.Post("/api/sync", syncHandler.SyncUser)
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", deps.Config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting http server", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
