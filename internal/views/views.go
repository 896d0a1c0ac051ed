// Package views renders the widget, the admin dashboard and the route listing
// from embedded html/template files. Handlers build the data structs; the
// templates only format them.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	TemplateWidget     = "widget"
	TemplateWidgetPage = "widget_page"
	TemplateDashboard  = "dashboard"
	TemplateList       = "list"
	TemplateDetail     = "detail"
	TemplateRoutes     = "routes"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown above the dashboard
type Flash struct {
	Kind string
	Text string
}

// WidgetData is everything the widget template needs
type WidgetData struct {
	State            widget.State
	Page             string
	Browser          string
	PageURL          string
	ReturnTo         string
	MaxLength        int
	MaxScreenshotMB  int64
	CloseDelayMillis int64
}

// NewWidgetData builds widget data from a snapshot and the request context
func NewWidgetData(w *widget.Widget, state widget.State, pageURL, userAgent, returnTo string, closeDelay time.Duration) *WidgetData {
	return &WidgetData{
		State:            state,
		Page:             widget.CurrentPage(pageURL),
		Browser:          widget.BrowserName(userAgent),
		PageURL:          pageURL,
		ReturnTo:         returnTo,
		MaxLength:        w.MaxMessageLength(),
		MaxScreenshotMB:  w.MaxScreenshotSize() / (1024 * 1024),
		CloseDelayMillis: closeDelay.Milliseconds(),
	}
}

// ListData is the live region of the dashboard: stats and cards
type ListData struct {
	Stats  dashboard.Stats
	Loaded bool
	Cards  []dashboard.Card
	Error  string
}

// NewListData reads the live region from d
func NewListData(d *dashboard.Dashboard) ListData {
	return ListData{
		Stats:  d.Stats(),
		Loaded: d.Loaded(),
		Cards:  d.Cards(),
		Error:  d.ListError(),
	}
}

// DashboardData is the full dashboard page
type DashboardData struct {
	List        ListData
	Filters     dashboard.Filters
	Detail      *dashboard.Detail
	Flashes     []Flash
	Widget      *WidgetData
	PollSeconds int
}

// RouteData describes one registered route
type RouteData struct {
	Method string
	Path   string
}

// RoutesData is the route listing page
type RoutesData struct {
	Service      string
	Version      string
	Routes       []RouteData
	MethodCounts map[string]int
}

// Renderer executes the embedded templates
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates. markdown renders the AI analysis;
// when nil, analysis text is shown escaped.
func NewRenderer(markdown serviceinterfaces.MarkdownRenderer) (*Renderer, error) {
	tmpl, err := template.New("views").Funcs(funcMap(markdown)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to parse templates")
	}
	return &Renderer{templates: tmpl}, nil
}

// Render writes the named template to w
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	// Render into a buffer so a failing template never leaves half a page behind
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return contextutils.WrapErrorf(err, "failed to render %s", name)
	}
	_, err := buf.WriteTo(w)
	return err
}

func funcMap(markdown serviceinterfaces.MarkdownRenderer) template.FuncMap {
	return template.FuncMap{
		"markdown": func(s string) template.HTML {
			if markdown == nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return markdown.Render(s)
		},
		"imageSrc":   SafeImageURL,
		"mailto":     mailtoURL,
		"itemImage":  itemImage,
		"orDash":     orDash,
		"itoa":       strconv.Itoa,
		"statuses":   func() []models.StatusInfo { return models.Statuses },
		"tiers":      func() []models.TierInfo { return models.Tiers },
		"priorities": func() []models.PriorityInfo { return models.Priorities },
		"categories": func() []models.CategoryInfo { return models.Categories },
		"statsValue": statsValue,
		"tierNumber": tierNumber,
		"lower":      strings.ToLower,
	}
}

// SafeImageURL returns src as a trusted URL when it is an inline image or a
// web URL. Anything else, javascript: included, renders as an empty src.
func SafeImageURL(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
		return template.URL(src)
	}
	return ""
}

// mailtoURL links well-formed addresses only
func mailtoURL(email string) template.URL {
	if email == "" || !contextutils.IsValidEmail(email) {
		return ""
	}
	return template.URL("mailto:" + email)
}

func itemImage(item models.FeedbackItem) template.URL {
	if !item.HasScreenshot() {
		return ""
	}
	return SafeImageURL(*item.ScreenshotURL)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// tierNumber shows the tier the API assigned; untiered items get "-"
func tierNumber(tier int) string {
	if tier <= 0 {
		return "-"
	}
	return strconv.Itoa(tier)
}

// statsValue shows "-" until the first load succeeded
func statsValue(loaded bool, n int) string {
	if !loaded {
		return "-"
	}
	return strconv.Itoa(n)
}
