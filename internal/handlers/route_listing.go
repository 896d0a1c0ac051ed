package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/version"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"

	"github.com/gin-gonic/gin"
)

// RouteInfo represents information about a single route
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	HandlerName string `json:"handler_name"`
}

// RouteListingHandler generates automatic route listings
type RouteListingHandler struct {
	serviceName string
	renderer    *views.Renderer
	routes      []RouteInfo
}

// NewRouteListingHandler creates a new route listing handler
func NewRouteListingHandler(serviceName string, renderer *views.Renderer) *RouteListingHandler {
	return &RouteListingHandler{
		serviceName: serviceName,
		renderer:    renderer,
		routes:      []RouteInfo{},
	}
}

// CollectRoutes extracts all routes from a Gin engine
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	h.routes = []RouteInfo{}

	for _, route := range engine.Routes() {
		// Skip internal Gin routes
		if strings.HasPrefix(route.Path, "/debug/") {
			continue
		}

		h.routes = append(h.routes, RouteInfo{
			Method:      route.Method,
			Path:        route.Path,
			HandlerName: route.Handler,
		})
	}

	// Sort by path, then method
	sort.Slice(h.routes, func(i, j int) bool {
		if h.routes[i].Path == h.routes[j].Path {
			return h.routes[i].Method < h.routes[j].Method
		}
		return h.routes[i].Path < h.routes[j].Path
	})
}

// GetRouteListing shows all routes as HTML, or as JSON with ?json=true
func (h *RouteListingHandler) GetRouteListing(c *gin.Context) {
	if c.Query("json") == "true" {
		h.GetRouteListingJSON(c)
		return
	}
	h.GetRouteListingPage(c)
}

// GetRouteListingPage shows all available routes as HTML
func (h *RouteListingHandler) GetRouteListingPage(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_page")
	defer observability.FinishSpan(span, nil)

	data := views.RoutesData{
		Service:      h.serviceName,
		Version:      version.Version,
		Routes:       make([]views.RouteData, 0, len(h.routes)),
		MethodCounts: make(map[string]int),
	}
	for _, route := range h.routes {
		data.Routes = append(data.Routes, views.RouteData{Method: route.Method, Path: route.Path})
		data.MethodCounts[route.Method] = h.countMethods(route.Method)
	}
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	renderHTML(c, h.renderer, http.StatusOK, views.TemplateRoutes, data)
}

// GetRouteListingJSON returns the route listing as JSON
func (h *RouteListingHandler) GetRouteListingJSON(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_json")
	defer observability.FinishSpan(span, nil)
	c.JSON(http.StatusOK, h.routes)
}

// countMethods counts routes by HTTP method
func (h *RouteListingHandler) countMethods(method string) int {
	count := 0
	for _, route := range h.routes {
		if route.Method == method {
			count++
		}
	}
	return count
}
