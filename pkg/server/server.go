// Package server exposes the knowledge-base API over HTTP: tenant
// administration, document ingestion and listing, grounded question
// answering, feedback and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atlas/pkg/feedback"
	"atlas/pkg/ingest"
	"atlas/pkg/log"
	"atlas/pkg/metrics"
	"atlas/pkg/ratelimit"
	"atlas/pkg/rawstore"
	"atlas/pkg/retrieval"
	"atlas/pkg/tenant"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10

// Config carries the server's dependency-independent settings.
type Config struct {
	// AdminKey guards tenant administration. Empty disables admin routes.
	AdminKey string
	// MaxDocTextLen caps the text length of a single submitted document.
	MaxDocTextLen int
	Version       string
}

const defaultMaxDocTextLen = 200_000

// APIServer ties the orchestrators together behind the HTTP surface.
type APIServer struct {
	echo      *echo.Echo
	config    Config
	registry  *tenant.Registry
	limiter   *ratelimit.Limiter
	raw       rawstore.Store
	ingest    *ingest.Orchestrator
	retrieval *retrieval.Orchestrator
	feedback  *feedback.Store
	metrics   *metrics.Metrics
}

// NewAPIServer creates the server. The feedback store and metrics may be
// nil, which disables their routes.
func NewAPIServer(
	config Config,
	registry *tenant.Registry,
	limiter *ratelimit.Limiter,
	raw rawstore.Store,
	ingestOrch *ingest.Orchestrator,
	retrievalOrch *retrieval.Orchestrator,
	feedbackStore *feedback.Store,
	m *metrics.Metrics,
) *APIServer {
	if config.MaxDocTextLen <= 0 {
		config.MaxDocTextLen = defaultMaxDocTextLen
	}
	return &APIServer{
		echo:      echo.New(),
		config:    config,
		registry:  registry,
		limiter:   limiter,
		raw:       raw,
		ingest:    ingestOrch,
		retrieval: retrievalOrch,
		feedback:  feedbackStore,
		metrics:   m,
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (api *APIServer) Start(addr string) error {
	api.setupRoutes()

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", api.config.Version).
			Int("tenants", api.registry.Count()).
			Msg("Starting knowledge base server")

		if err := api.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return api.Shutdown()
}

// Shutdown stops the HTTP listener and background workers.
func (api *APIServer) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout*time.Second)
	defer cancel()

	if err := api.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	if api.limiter != nil {
		api.limiter.Stop()
	}
	if api.feedback != nil {
		if err := api.feedback.Close(); err != nil {
			log.Warn().Err(err).Msg("Feedback store close failed")
		}
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (api *APIServer) setupRoutes() {
	// Echo configuration
	api.echo.HideBanner = true
	api.echo.HidePort = true
	api.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	api.echo.Use(middleware.Recover())

	// Setup routes
	api.echo.GET("/health", api.health)
	if api.metrics != nil {
		api.echo.GET("/metrics", echo.WrapHandler(api.metrics.Handler()))
	}

	admin := api.echo.Group("", api.adminAuth)
	admin.POST("/tenants", api.createTenant)
	admin.POST("/tenants/:tenant_id/rotate-key", api.rotateTenantKey)

	// requestMetrics wraps rateLimit so denied requests still show up in
	// the request counters.
	tenants := api.echo.Group("/tenants/:tenant_id", api.apiKeyAuth, api.requestMetrics, api.rateLimit)
	tenants.POST("/docs", api.ingestDocs)
	tenants.GET("/docs", api.listDocs)
	tenants.GET("/docs/:doc_id", api.getDoc)
	tenants.POST("/ask", api.ask)
	if api.feedback != nil {
		tenants.POST("/feedback", api.submitFeedback)
		tenants.GET("/feedback", api.listFeedback)
	}
}
