package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/middleware"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// widgetPath is where the widget page lives
const widgetPath = "/feedback/widget"

// FeedbackHandler serves the feedback widget of the session's user
type FeedbackHandler struct {
	widgets  *widget.Registry
	renderer *views.Renderer
	config   *config.Config
	logger   *observability.Logger
}

// NewFeedbackHandler creates a FeedbackHandler
func NewFeedbackHandler(widgets *widget.Registry, renderer *views.Renderer, cfg *config.Config, logger *observability.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		widgets:  widgets,
		renderer: renderer,
		config:   cfg,
		logger:   logger,
	}
}

// FeedbackSubmissionRequest is the widget form. The screenshot travels as a
// multipart file next to these fields.
type FeedbackSubmissionRequest struct {
	Message      string `json:"message" form:"message"`
	PageURL      string `json:"page_url" form:"page_url"`
	ScreenWidth  int    `json:"screen_width" form:"screen_width"`
	ScreenHeight int    `json:"screen_height" form:"screen_height"`
	ReturnTo     string `json:"return_to" form:"return_to"`
}

func (h *FeedbackHandler) widgetFor(c *gin.Context) *widget.Widget {
	return h.widgets.Get(middleware.TokenFromContext(c))
}

// GetWidget handles GET /feedback/widget. ?open=1 opens the modal, ?open=0 closes it,
// ?fragment=1 renders the widget without the page around it.
func (h *FeedbackHandler) GetWidget(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_widget")
	defer observability.FinishSpan(span, nil)

	w := h.widgetFor(c)
	switch c.Query("open") {
	case "1":
		w.Open()
	case "0":
		w.Close()
	}

	state := w.Snapshot()
	// the alert is shown once
	w.TakeAlert()

	pageURL := c.Query("page_url")
	if pageURL == "" {
		pageURL = c.Request.Referer()
	}
	data := views.NewWidgetData(w, state, pageURL, c.Request.UserAgent(), localOrEmpty(c.Query("return_to")),
		h.config.Widget.SuccessCloseDelay)

	name := views.TemplateWidgetPage
	if c.Query("fragment") == "1" {
		name = views.TemplateWidget
	}
	renderHTML(c, h.renderer, http.StatusOK, name, data)
}

// SubmitFeedback handles POST /feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	defer observability.FinishSpan(span, nil)

	var req FeedbackSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}

	w := h.widgetFor(c)
	w.Open()
	w.SetMessage(req.Message)

	if err := h.attachUpload(c, w); err != nil {
		h.answer(c, w, req, err, http.StatusOK)
		return
	}

	page := widget.PageContext{
		URL:          req.PageURL,
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		UserAgent:    c.Request.UserAgent(),
	}
	if page.URL == "" {
		page.URL = c.Request.Referer()
	}
	span.SetAttributes(attribute.String("feedback.tab_context", widget.CurrentPage(page.URL)))

	err := w.Submit(ctx, page)
	h.answer(c, w, req, err, http.StatusCreated)
}

// AttachScreenshot handles POST /feedback/screenshot
func (h *FeedbackHandler) AttachScreenshot(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "attach_screenshot")
	defer observability.FinishSpan(span, nil)

	var req FeedbackSubmissionRequest
	_ = c.ShouldBind(&req)

	w := h.widgetFor(c)
	w.Open()
	w.SetMessage(req.Message)

	err := h.attachUpload(c, w)
	if err == nil && !hasUpload(c) {
		err = contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityInfo,
			"screenshot missing", "")
	}
	h.answer(c, w, req, err, http.StatusOK)
}

// RemoveScreenshot handles POST /feedback/screenshot/remove
func (h *FeedbackHandler) RemoveScreenshot(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "remove_screenshot")
	defer observability.FinishSpan(span, nil)

	var req FeedbackSubmissionRequest
	_ = c.ShouldBind(&req)

	w := h.widgetFor(c)
	w.SetMessage(req.Message)
	w.RemoveScreenshot()
	h.answer(c, w, req, nil, http.StatusOK)
}

// attachUpload attaches the multipart screenshot, if one was sent
func (h *FeedbackHandler) attachUpload(c *gin.Context, w *widget.Widget) error {
	fh, err := c.FormFile("screenshot")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil
	}
	return w.AttachScreenshot(uploadFromFileHeader(fh))
}

func hasUpload(c *gin.Context) bool {
	fh, err := c.FormFile("screenshot")
	return err == nil && fh != nil && fh.Filename != ""
}

// uploadFromFileHeader defers opening the file until the widget asks for it
func uploadFromFileHeader(fh *multipart.FileHeader) widget.Upload {
	return widget.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// answer finishes a widget post: JSON callers get the outcome, browsers are
// sent back to the open widget where the alert or success message shows.
func (h *FeedbackHandler) answer(c *gin.Context, w *widget.Widget, req FeedbackSubmissionRequest, err error, okStatus int) {
	if middleware.WantsJSON(c) {
		// JSON callers read the error instead of the alert
		w.TakeAlert()
		if err != nil {
			HandleAppError(c, err)
			return
		}
		c.JSON(okStatus, gin.H{"status": "ok", "widget": gin.H{
			"open":           w.IsOpen(),
			"has_screenshot": w.Snapshot().HasScreenshot,
		}})
		return
	}

	query := url.Values{}
	query.Set("open", "1")
	if req.PageURL != "" {
		query.Set("page_url", req.PageURL)
	}
	if target := localOrEmpty(req.ReturnTo); target != "" {
		query.Set("return_to", target)
	}
	seeOther(c, widgetPath+"?"+query.Encode())
}

// localOrEmpty keeps same-site paths and drops everything else
func localOrEmpty(target string) string {
	if isLocalPath(target) {
		return target
	}
	return ""
}
