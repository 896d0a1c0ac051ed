// Package main provides the entry point of the feedback console: the feedback
// widget and the admin triage dashboard in front of the remote feedback API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/di"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/handlers"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/version"

	"github.com/gin-gonic/gin"
)

// Application encapsulates the main application logic and can be tested
type Application struct {
	container di.ServiceContainerInterface
	router    *gin.Engine
	server    *http.Server
}

// NewApplication creates a new application instance
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	renderer, err := container.GetRenderer()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get renderer")
	}

	widgets, err := container.GetWidgets()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get widget registry")
	}

	dashboards, err := container.GetDashboards()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get dashboard registry")
	}

	router := handlers.NewRouter(container.GetConfig(), widgets, dashboards, renderer, container.GetLogger())

	return &Application{
		container: container,
		router:    router,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the listener fails
func (a *Application) Run(ctx context.Context, port string) error {
	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		return contextutils.WrapError(err, "server failed")
	}
}

// Shutdown stops accepting requests, then stops pollers and widget timers
func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return contextutils.WrapError(err, "failed to shut down http server")
		}
	}
	return a.container.Shutdown(ctx)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, cfg.OpenTelemetry.ServiceName, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ObservabilityShutdownTimeout)
		defer shutdownCancel()
		observability.Shutdown(shutdownCtx, tp, mp, logger)
	}()

	logger.Info(ctx, "Starting feedback console", map[string]interface{}{
		"port":         cfg.Server.Port,
		"logLevel":     cfg.Server.LogLevel,
		"feedback_api": cfg.FeedbackAPI.BaseURL,
		"version":      version.String(),
	})
	if cfg.Server.SessionSecret == "" {
		logger.Error(ctx, "Session secret is not configured", nil, map[string]interface{}{"env": "SERVER_SESSION_SECRET"})
		os.Exit(1)
	}

	// Initialize dependency injection container
	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err, nil)
		os.Exit(1)
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err, nil)
		os.Exit(1)
	}

	appErr := make(chan error, 1)
	go func() {
		if err := app.Run(ctx, cfg.Server.Port); err != nil {
			appErr <- err
		}
	}()

	// Wait for shutdown signal or application error
	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	case err := <-appErr:
		logger.Error(ctx, "Application failed", err, nil)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err, nil)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully", nil)
}
