package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/middleware"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"

	"github.com/gin-gonic/gin"
)

// dashboardPath is the admin dashboard page
const dashboardPath = "/admin/feedback"

// githubIssueCreated confirms an issue the API returned no link for
const githubIssueCreated = "GitHub Issue erstellt"

// AdminHandler serves the triage dashboard. Every route acts on the dashboard
// bound to the caller's session credential.
type AdminHandler struct {
	dashboards *dashboard.Registry
	widgets    *widget.Registry
	renderer   *views.Renderer
	config     *config.Config
	logger     *observability.Logger
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(dashboards *dashboard.Registry, widgets *widget.Registry, renderer *views.Renderer, cfg *config.Config, logger *observability.Logger) *AdminHandler {
	return &AdminHandler{
		dashboards: dashboards,
		widgets:    widgets,
		renderer:   renderer,
		config:     cfg,
		logger:     logger,
	}
}

func (h *AdminHandler) dashboardFor(c *gin.Context) *dashboard.Dashboard {
	return h.dashboards.Get(middleware.TokenFromContext(c))
}

// ensureMounted mounts the dashboard on first use; later visits rely on polling and action reloads
func (h *AdminHandler) ensureMounted(ctx context.Context, d *dashboard.Dashboard) {
	if d.IsMounted() {
		return
	}
	if err := d.Mount(ctx); err != nil {
		h.logger.Warn(ctx, "Initial feedback load failed", map[string]interface{}{"error": err.Error()})
	}
}

// GetDashboard handles GET /admin/feedback. ?filter=1 replaces the filters with
// the status, tier, priority and category query values.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_dashboard")
	defer observability.FinishSpan(span, nil)

	d := h.dashboardFor(c)
	if c.Query("filter") == "1" {
		filters := FiltersFromQuery(c)
		d.SetFilters(filters)
		for _, kind := range dashboard.FilterKinds {
			if v := filters.Get(kind); v != "" {
				span.SetAttributes(observability.AttributeFilter(string(kind), v))
			}
		}
	}
	h.ensureMounted(ctx, d)
	h.renderDashboard(c, d)
}

func (h *AdminHandler) renderDashboard(c *gin.Context, d *dashboard.Dashboard) {
	data := views.DashboardData{
		List:        views.NewListData(d),
		Filters:     d.Filters(),
		Flashes:     takeFlashes(c),
		PollSeconds: int(h.config.Dashboard.PollInterval.Seconds()),
	}
	if detail, ok := d.Detail(); ok {
		data.Detail = &detail
	}

	w := h.widgets.Get(middleware.TokenFromContext(c))
	state := w.Snapshot()
	w.TakeAlert()
	data.Widget = views.NewWidgetData(w, state, c.Request.URL.String(), c.Request.UserAgent(), dashboardPath,
		h.config.Widget.SuccessCloseDelay)

	renderHTML(c, h.renderer, http.StatusOK, views.TemplateDashboard, data)
}

// GetList handles GET /admin/feedback/list: the live stats and cards as a
// fragment, or as JSON with ?format=json. JSON is paged with page and page_size.
func (h *AdminHandler) GetList(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_list")
	defer observability.FinishSpan(span, nil)

	d := h.dashboardFor(c)
	h.ensureMounted(ctx, d)

	if middleware.WantsJSON(c) {
		visible := d.Visible()
		span.SetAttributes(observability.AttributeItemCount(len(visible)))
		page, size := ParsePagination(c, defaultPageSize, maxPageSize)
		items, pagination := Paginate(visible, page, size)
		WritePaginated(c, "items", items, pagination, gin.H{
			"stats":   d.Stats(),
			"loaded":  d.Loaded(),
			"error":   d.ListError(),
			"filters": d.Filters(),
		})
		return
	}
	renderHTML(c, h.renderer, http.StatusOK, views.TemplateList, views.NewListData(d))
}

// Refresh handles POST /admin/feedback/refresh
func (h *AdminHandler) Refresh(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "refresh")
	defer observability.FinishSpan(span, nil)

	d := h.dashboardFor(c)
	var err error
	if d.IsMounted() {
		err = d.Load(ctx)
	} else {
		err = d.Mount(ctx)
	}
	if middleware.WantsJSON(c) {
		h.finish(c, err, dashboardPath)
		return
	}
	// a failed load shows up as the list error
	seeOther(c, dashboardPath)
}

// Unmount handles POST /admin/feedback/unmount
func (h *AdminHandler) Unmount(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "unmount")
	defer observability.FinishSpan(span, nil)

	if d, ok := h.dashboards.Lookup(middleware.TokenFromContext(c)); ok {
		d.Unmount()
	}
	c.Status(http.StatusNoContent)
}

// OpenDetail handles GET /admin/feedback/:id
func (h *AdminHandler) OpenDetail(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "open_detail")
	defer observability.FinishSpan(span, nil)

	d := h.dashboardFor(c)
	h.ensureMounted(ctx, d)

	detail, err := d.OpenDetail(ctx, c.Param("id"))
	if middleware.WantsJSON(c) {
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail.Item)
		return
	}
	if err != nil {
		addFlash(c, views.FlashError, dashboard.AlertFor(err))
		seeOther(c, dashboardPath)
		return
	}
	h.renderDashboard(c, d)
}

// CloseDetail handles POST /admin/feedback/:id/close
func (h *AdminHandler) CloseDetail(c *gin.Context) {
	h.dashboardFor(c).CloseDetail()
	h.finish(c, nil, dashboardPath)
}

// SaveChanges handles POST /admin/feedback/:id/save
func (h *AdminHandler) SaveChanges(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "save_changes",
		observability.AttributeStatus(c.PostForm("status")),
		observability.AttributePriority(c.PostForm("priority")),
	)
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	var req struct {
		Status   string `json:"status" form:"status"`
		Priority string `json:"priority" form:"priority"`
	}
	_ = c.ShouldBind(&req)

	err := h.dashboardFor(c).SaveChanges(ctx, id, req.Status, req.Priority)
	// the detail stays open when saving failed
	h.finish(c, err, detailOrList(err, id))
}

// Triage handles POST /admin/feedback/:id/triage
func (h *AdminHandler) Triage(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "triage")
	defer observability.FinishSpan(span, nil)

	err := h.dashboardFor(c).Triage(ctx, c.Param("id"))
	h.finish(c, err, dashboardPath)
}

// Approve handles POST /admin/feedback/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "approve")
	defer observability.FinishSpan(span, nil)

	var req struct {
		Note string `json:"note" form:"note"`
	}
	_ = c.ShouldBind(&req)

	err := h.dashboardFor(c).Approve(ctx, c.Param("id"), strings.TrimSpace(req.Note))
	h.finish(c, err, dashboardPath)
}

// Reject handles POST /admin/feedback/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "reject")
	defer observability.FinishSpan(span, nil)

	var req struct {
		Reason string `json:"reason" form:"reason"`
	}
	_ = c.ShouldBind(&req)

	err := h.dashboardFor(c).Reject(ctx, c.Param("id"), req.Reason)
	h.finish(c, err, dashboardPath)
}

// AddComment handles POST /admin/feedback/:id/comment
func (h *AdminHandler) AddComment(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "add_comment")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	var req struct {
		Comment    string `json:"comment" form:"comment"`
		IsInternal bool   `json:"is_internal" form:"is_internal"`
	}
	_ = c.ShouldBind(&req)

	err := h.dashboardFor(c).AddComment(ctx, id, req.Comment, req.IsInternal)
	h.finish(c, err, detailPath(id))
}

// GetSolution handles GET /admin/feedback/:id/solution
func (h *AdminHandler) GetSolution(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_solution")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	solution, err := h.dashboardFor(c).LoadSolution(ctx, id)
	h.finishSolution(c, id, solution, err)
}

// GenerateSolution handles POST /admin/feedback/:id/solution
func (h *AdminHandler) GenerateSolution(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_solution")
	defer observability.FinishSpan(span, nil)

	id := c.Param("id")
	solution, err := h.dashboardFor(c).GenerateSolution(ctx, id)
	h.finishSolution(c, id, solution, err)
}

func (h *AdminHandler) finishSolution(c *gin.Context, id string, solution interface{}, err error) {
	if middleware.WantsJSON(c) && err == nil {
		c.JSON(http.StatusOK, solution)
		return
	}
	h.finish(c, err, detailPath(id))
}

// CreateGitHubIssue handles POST /admin/feedback/:id/github and sends the
// browser on to the new issue.
func (h *AdminHandler) CreateGitHubIssue(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_github_issue")
	defer observability.FinishSpan(span, nil)

	issueURL, err := h.dashboardFor(c).CreateGitHubIssue(ctx, c.Param("id"))
	if middleware.WantsJSON(c) {
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"github_url": issueURL})
		return
	}
	if err == nil && (strings.HasPrefix(issueURL, "https://") || strings.HasPrefix(issueURL, "http://")) {
		seeOther(c, issueURL)
		return
	}
	if err == nil {
		addFlash(c, views.FlashSuccess, githubIssueCreated)
	}
	h.finish(c, err, dashboardPath)
}

// finish ends an action: JSON callers get the outcome, browsers a redirect
// with the alert queued as a flash.
func (h *AdminHandler) finish(c *gin.Context, err error, target string) {
	if middleware.WantsJSON(c) {
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		addFlash(c, views.FlashError, dashboard.AlertFor(err))
	}
	seeOther(c, target)
}

func detailPath(id string) string {
	return dashboardPath + "/" + url.PathEscape(id)
}

func detailOrList(err error, id string) string {
	if err != nil {
		return detailPath(id)
	}
	return dashboardPath
}
