// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"sync"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/services"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"
)

// Service names
const (
	ServiceFeedbackAPI = "feedback_api"
	ServiceMarkdown    = "markdown"
	ServiceRenderer    = "renderer"
	ServiceWidgets     = "widgets"
	ServiceDashboards  = "dashboards"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetFeedbackAPI() (serviceinterfaces.FeedbackAPI, error)
	GetRenderer() (*views.Renderer, error)
	GetWidgets() (*widget.Registry, error)
	GetDashboards() (*dashboard.Registry, error)
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	metrics       *observability.Metrics
	api           serviceinterfaces.FeedbackAPI
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// WithFeedbackAPI replaces the HTTP feedback API client, used by tests
func (sc *ServiceContainer) WithFeedbackAPI(api serviceinterfaces.FeedbackAPI) *ServiceContainer {
	sc.api = api
	return sc
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return contextutils.WrapError(err, "failed to create metrics")
	}
	sc.metrics = metrics

	if err := sc.initializeServices(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapError(err, "failed to initialize services")
	}
	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetFeedbackAPI returns the feedback API client
func (sc *ServiceContainer) GetFeedbackAPI() (serviceinterfaces.FeedbackAPI, error) {
	return GetServiceAs[serviceinterfaces.FeedbackAPI](sc, ServiceFeedbackAPI)
}

// GetRenderer returns the template renderer
func (sc *ServiceContainer) GetRenderer() (*views.Renderer, error) {
	return GetServiceAs[*views.Renderer](sc, ServiceRenderer)
}

// GetWidgets returns the per-session widget registry
func (sc *ServiceContainer) GetWidgets() (*widget.Registry, error) {
	return GetServiceAs[*widget.Registry](sc, ServiceWidgets)
}

// GetDashboards returns the per-session dashboard registry
func (sc *ServiceContainer) GetDashboards() (*dashboard.Registry, error) {
	return GetServiceAs[*dashboard.Registry](sc, ServiceDashboards)
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown stops every dashboard poller and widget timer
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs the shutdown functions in reverse order of initialization
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(ctx context.Context) error {
	// Feedback API client, shared by widgets and dashboards
	if sc.api == nil {
		api, err := services.NewFeedbackAPIService(sc.cfg, sc.logger, sc.metrics)
		if err != nil {
			return err
		}
		sc.api = api
	}
	sc.services[ServiceFeedbackAPI] = sc.api

	markdown := services.NewMarkdownService()
	sc.services[ServiceMarkdown] = markdown

	renderer, err := views.NewRenderer(markdown)
	if err != nil {
		return err
	}
	sc.services[ServiceRenderer] = renderer

	widgets := widget.NewRegistry(widget.OptionsFromConfig(sc.cfg, sc.api, sc.logger, sc.metrics))
	sc.services[ServiceWidgets] = widgets
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(ctx context.Context) error {
		sc.logger.Info(ctx, "Stopping widgets", map[string]interface{}{"count": widgets.Len()})
		widgets.Close()
		return nil
	})

	dashboardOpts := dashboard.OptionsFromConfig(sc.cfg, sc.api, sc.logger, sc.metrics)
	dashboards := dashboard.NewRegistry(dashboardOpts)
	sc.services[ServiceDashboards] = dashboards
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(ctx context.Context) error {
		sc.logger.Info(ctx, "Stopping dashboards", map[string]interface{}{"count": dashboards.Len()})
		dashboards.Close()
		return nil
	})

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{
		"feedback_api": sc.cfg.FeedbackAPI.BaseURL,
		"poll_seconds": sc.cfg.Dashboard.PollInterval.Seconds(),
	})
	return nil
}
