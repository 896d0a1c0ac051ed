package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/middleware"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/version"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"
)

// multipartOverhead is the room left for form fields next to a maximum size screenshot
const multipartOverhead = 1 << 20

// NewRouter creates the console router with all middleware and routes
func NewRouter(
	cfg *config.Config,
	widgets *widget.Registry,
	dashboards *dashboard.Registry,
	renderer *views.Renderer,
	logger *observability.Logger,
) *gin.Engine {
	// Setup Gin mode
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}
	if cfg.IsTest {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(logger))
	router.Use(middleware.RequestID())

	// HTTP request logging using our observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
			"request_id":       c.Writer.Header().Get(middleware.RequestIDHeader),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.OpenTelemetry.ServiceName, "version": version.Version})
	})

	// OpenTelemetry middleware for HTTP tracing and context propagation with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling(cfg.OpenTelemetry.ServiceName)...)

	router.RedirectTrailingSlash = false
	router.MaxMultipartMemory = cfg.Widget.MaxScreenshotSize + multipartOverhead

	// Setup CORS middleware
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader}
		corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	// Setup session middleware
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	// Widget and dashboard script and stylesheet
	staticFS, _ := fs.Sub(AssetsFS, "assets")
	router.StaticFS("/assets", http.FS(staticFS))

	// Initialize handlers
	sessionHandler := NewSessionHandler(widgets, dashboards, logger)
	feedbackHandler := NewFeedbackHandler(widgets, renderer, cfg, logger)
	adminHandler := NewAdminHandler(dashboards, widgets, renderer, cfg, logger)

	router.POST("/session", sessionHandler.CreateSession)
	router.DELETE("/session", sessionHandler.DeleteSession)
	router.POST("/session/logout", sessionHandler.DeleteSession)

	feedback := router.Group("/feedback")
	feedback.Use(middleware.RequireToken())
	{
		feedback.GET("/widget", feedbackHandler.GetWidget)
		feedback.POST("", feedbackHandler.SubmitFeedback)
		feedback.POST("/screenshot", feedbackHandler.AttachScreenshot)
		feedback.POST("/screenshot/remove", feedbackHandler.RemoveScreenshot)
	}

	admin := router.Group("/admin/feedback")
	admin.Use(middleware.RequireToken())
	{
		admin.GET("", adminHandler.GetDashboard)
		admin.GET("/list", adminHandler.GetList)
		admin.POST("/refresh", adminHandler.Refresh)
		admin.POST("/unmount", adminHandler.Unmount)
		admin.GET("/:id", adminHandler.OpenDetail)
		admin.POST("/:id/close", adminHandler.CloseDetail)
		admin.POST("/:id/save", adminHandler.SaveChanges)
		admin.POST("/:id/triage", adminHandler.Triage)
		admin.POST("/:id/approve", adminHandler.Approve)
		admin.POST("/:id/reject", adminHandler.Reject)
		admin.POST("/:id/comment", adminHandler.AddComment)
		admin.GET("/:id/solution", adminHandler.GetSolution)
		admin.POST("/:id/solution", adminHandler.GenerateSolution)
		admin.POST("/:id/github", adminHandler.CreateGitHubIssue)
	}

	router.NoRoute(func(c *gin.Context) {
		HandleAppError(c, contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo,
			"route not found", c.Request.URL.Path))
	})

	// Automatic route listing at root path
	routeListing := NewRouteListingHandler(cfg.OpenTelemetry.ServiceName, renderer)
	routeListing.CollectRoutes(router)
	router.GET("/", routeListing.GetRouteListing)

	return router
}
