package views

import (
	"bytes"
	"context"
	"html/template"
	"testing"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces/mocks"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk"

type fakeMarkdown struct {
	calls []string
}

func (f *fakeMarkdown) Render(s string) template.HTML {
	f.calls = append(f.calls, s)
	return template.HTML("<p class=\"md\">" + template.HTMLEscapeString(s) + "</p>")
}

func newTestRenderer(t *testing.T) (*Renderer, *fakeMarkdown) {
	t.Helper()
	md := &fakeMarkdown{}
	r, err := NewRenderer(md)
	require.NoError(t, err)
	return r, md
}

func render(t *testing.T, r *Renderer, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data))
	return buf.String()
}

func loadedDashboard(t *testing.T, items []models.FeedbackItem, err error) *dashboard.Dashboard {
	t.Helper()
	api := &mocks.MockFeedbackAPI{}
	api.On("List", mock.Anything).Return(items, err)
	d := dashboard.New(dashboard.Options{API: api, PollInterval: time.Hour})
	_ = d.Load(context.Background())
	return d
}

func TestSafeImageURL(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want template.URL
	}{
		{"data image", pngDataURL, template.URL(pngDataURL)},
		{"https", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"http", "http://example.com/a.png", "http://example.com/a.png"},
		{"javascript", "javascript:alert(1)", ""},
		{"data html", "data:text/html;base64,PHNjcmlwdD4=", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeImageURL(tt.src))
		})
	}
}

func TestRenderWidget_Form(t *testing.T) {
	r, _ := newTestRenderer(t)
	w := widget.New(widget.Options{})
	w.Open()
	w.SetMessage("Hallo <b>Welt</b>")

	data := NewWidgetData(w, w.Snapshot(), "https://lab.example.com/#settings", "Mozilla/5.0 Firefox/121.0", "/admin/feedback", 2*time.Second)
	out := render(t, r, TemplateWidget, data)

	assert.Contains(t, out, "💬 Feedback geben")
	assert.Contains(t, out, "Was möchtest du uns mitteilen?")
	assert.Contains(t, out, "<strong>Seite:</strong> <span data-widget-page>settings</span>")
	assert.Contains(t, out, "<strong>Browser:</strong> Firefox")
	assert.Contains(t, out, "Hallo &lt;b&gt;Welt&lt;/b&gt;")
	assert.Contains(t, out, "17 / 2000")
	assert.Contains(t, out, "📷 Screenshot hinzufügen")
	assert.Contains(t, out, "Feedback senden")
	assert.Contains(t, out, `data-close-delay="2000"`)
	assert.NotContains(t, out, "feedback-overlay hidden")
	assert.NotContains(t, out, "Danke für dein Feedback!")
	assert.Contains(t, out, `<a class="feedback-close" href="/feedback/widget?open=0" data-widget-close>`)
}

func TestRenderWidget_ClosedAndAlert(t *testing.T) {
	r, _ := newTestRenderer(t)
	w := widget.New(widget.Options{})
	state := w.Snapshot()
	state.Alert = "Fehler: <kaputt>"

	out := render(t, r, TemplateWidget, NewWidgetData(w, state, "/", "", "", time.Second))

	assert.Contains(t, out, "feedback-overlay hidden")
	assert.Contains(t, out, "Fehler: &lt;kaputt&gt;")
	assert.Contains(t, out, "<span data-widget-page>Dashboard</span>")
}

func TestRenderWidget_ScreenshotPreview(t *testing.T) {
	r, _ := newTestRenderer(t)
	w := widget.New(widget.Options{})
	state := w.Snapshot()
	state.Open = true
	state.Screenshot = pngDataURL
	state.HasScreenshot = true

	out := render(t, r, TemplateWidget, NewWidgetData(w, state, "/", "", "", time.Second))

	assert.Contains(t, out, `src="`+pngDataURL+`"`)
	assert.Contains(t, out, "✅ Screenshot hinzugefügt")
	assert.NotContains(t, out, "ZgotmplZ")
}

func TestRenderWidget_Success(t *testing.T) {
	r, _ := newTestRenderer(t)
	w := widget.New(widget.Options{})
	state := w.Snapshot()
	state.Open = true
	state.Phase = widget.PhaseSuccess

	out := render(t, r, TemplateWidget, NewWidgetData(w, state, "/", "", "", time.Second))

	assert.Contains(t, out, "Danke für dein Feedback!")
	assert.Contains(t, out, "Wir werden es so schnell wie möglich bearbeiten.")
	assert.NotContains(t, out, "Feedback senden")
}

func TestRenderWidgetPage(t *testing.T) {
	r, _ := newTestRenderer(t)
	w := widget.New(widget.Options{})

	out := render(t, r, TemplateWidgetPage, NewWidgetData(w, w.Snapshot(), "/", "", "", time.Second))

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `src="/assets/feedback.js"`)
	assert.Contains(t, out, "feedback-fab")
}

func TestRenderList_BeforeFirstLoad(t *testing.T) {
	r, _ := newTestRenderer(t)

	out := render(t, r, TemplateList, ListData{})

	assert.Contains(t, out, "Lade Feedbacks...")
	assert.Contains(t, out, `<div class="stat-value">-</div><div class="stat-label">Gesamt</div>`)
}

func TestRenderList_Cards(t *testing.T) {
	r, _ := newTestRenderer(t)
	created := time.Date(2024, 3, 5, 13, 7, 0, 0, time.UTC)
	d := loadedDashboard(t, []models.FeedbackItem{
		{ID: "a1", Message: "<script>alert(1)</script>", Status: models.StatusWaitingAdmin, Tier: 3,
			Priority: models.PriorityHigh, Category: models.CategoryBug, AISummary: "Login kaputt",
			UserEmail: "anna@example.com", CreatedAt: models.Timestamp{Time: created}},
		{ID: "b2", Message: "zweites", Status: models.StatusNeu, Tier: 1},
	}, nil)

	out := render(t, r, TemplateList, NewListData(d))

	assert.Contains(t, out, `<div class="stat-value">2</div><div class="stat-label">Gesamt</div>`)
	assert.Contains(t, out, `<div class="stat-value">1</div><div class="stat-label">Wartend</div>`)
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<script>alert(1)")
	assert.Contains(t, out, "🤖 Login kaputt")
	assert.Contains(t, out, "anna@example.com")
	assert.Contains(t, out, "05.03. 14:07")
	assert.Contains(t, out, "Unbekannt")
	assert.Contains(t, out, `data-confirm="AI-Triage erneut ausführen?"`)
	assert.Contains(t, out, `data-confirm="GitHub Issue erstellen?"`)
	// only the waiting item offers approval
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("✅ Freigeben")))
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("❌ Ablehnen")))
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("🔍 Triage")))
}

func TestRenderList_TierBadgeShowsAssignedTier(t *testing.T) {
	r, _ := newTestRenderer(t)
	d := loadedDashboard(t, []models.FeedbackItem{
		{ID: "a1", Message: "neu", Status: models.StatusNeu},
		{ID: "b2", Message: "eskaliert", Status: models.StatusWaitingOwner, Tier: 4},
	}, nil)

	out := render(t, r, TemplateList, NewListData(d))

	assert.Contains(t, out, ">Tier -</span>")
	assert.Contains(t, out, ">Tier 4</span>")
	assert.NotContains(t, out, ">Tier 3</span>")
}

func TestRenderList_Empty(t *testing.T) {
	r, _ := newTestRenderer(t)
	d := loadedDashboard(t, []models.FeedbackItem{}, nil)

	out := render(t, r, TemplateList, NewListData(d))

	assert.Contains(t, out, "Keine Feedbacks gefunden")
	assert.Contains(t, out, `<div class="stat-value">0</div><div class="stat-label">Gesamt</div>`)
}

func TestRenderList_Error(t *testing.T) {
	r, _ := newTestRenderer(t)
	d := loadedDashboard(t, nil, contextutils.NewAppError(contextutils.ErrorCodeUnauthorized,
		contextutils.SeverityWarn, "feedback API rejected credentials", "Not authenticated"))

	out := render(t, r, TemplateList, NewListData(d))

	assert.Contains(t, out, "API Fehler: Not authenticated")
	assert.NotContains(t, out, "Keine Feedbacks gefunden")
}

func TestRenderDashboard_FiltersAndFlashes(t *testing.T) {
	r, _ := newTestRenderer(t)
	d := loadedDashboard(t, []models.FeedbackItem{{ID: "a1", Status: models.StatusNeu, Tier: 2}}, nil)
	require.NoError(t, d.SetFilter(dashboard.FilterTier, "2"))

	out := render(t, r, TemplateDashboard, DashboardData{
		List:        NewListData(d),
		Filters:     d.Filters(),
		Flashes:     []Flash{{Kind: FlashError, Text: "Fehler: nope"}},
		PollSeconds: 30,
	})

	assert.Contains(t, out, "📋 Feedback Management")
	assert.Contains(t, out, "🔄 Aktualisieren")
	assert.Contains(t, out, "Alle Status")
	assert.Contains(t, out, "Alle Prioritäten")
	assert.Contains(t, out, "Alle Kategorien")
	assert.Contains(t, out, `<option value="2" selected>Tier 2: User-Auswahl</option>`)
	assert.Contains(t, out, `<div class="feedback-flash error" role="alert">Fehler: nope</div>`)
	assert.Contains(t, out, `data-poll-seconds="30"`)
	assert.Contains(t, out, "Filter zurücksetzen")
	assert.NotContains(t, out, "feedback-detail-overlay")
}

func TestRenderDetail(t *testing.T) {
	r, md := newTestRenderer(t)
	confidence := 0.87
	shot := pngDataURL
	d := loadedDashboard(t, []models.FeedbackItem{{
		ID:                   "0123456789abcdef",
		Message:              "Button geht nicht",
		ScreenshotURL:        &shot,
		Status:               models.StatusWaitingUser,
		Tier:                 2,
		Priority:             models.PriorityCritical,
		AISummary:            "UI Fehler",
		AISolutionCode:       "fix()",
		AISolutionConfidence: &confidence,
		SolutionOptions: []models.SolutionOption{
			{ID: "opt-a", Label: "Variante A", RiskLevel: "LOW"},
			{ID: "opt-b", Label: "Variante B", RiskLevel: "high"},
		},
		UserSelectedOption: "opt-b",
		ScreenSize:         "1920x1080",
	}}, nil)
	_, err := d.OpenDetail(context.Background(), "0123456789abcdef")
	require.NoError(t, err)
	detail, ok := d.Detail()
	require.True(t, ok)
	detail.Solution = &models.AISolution{Analysis: "**Ursache** gefunden", Steps: []string{"eins"}, Confidence: 0.5}

	out := render(t, r, TemplateDetail, &detail)

	assert.Contains(t, out, "Feedback #01234567")
	assert.Contains(t, out, `src="`+pngDataURL+`"`)
	assert.Contains(t, out, `<option value="waiting_user" selected>`)
	assert.Contains(t, out, `<option value="critical" selected>`)
	assert.Contains(t, out, "Tier 2: User-Auswahl")
	assert.Contains(t, out, "Du wählst die Lösung")
	assert.Contains(t, out, "🤖 AI-Analyse")
	assert.Contains(t, out, "Lösungsvorschlag (Confidence: 87%)")
	assert.Contains(t, out, "Lösungsoptionen (Tier 2)")
	assert.Contains(t, out, `<div class="solution-option selected">`)
	assert.Contains(t, out, "risk-low")
	assert.Contains(t, out, `<p class="md">**Ursache** gefunden</p>`)
	assert.Equal(t, []string{"**Ursache** gefunden"}, md.calls)
	assert.Contains(t, out, "<dt>User</dt><dd>-</dd>")
	assert.Contains(t, out, "<dt>Screen</dt><dd>1920x1080</dd>")
	assert.Contains(t, out, "Keine Kommentare")
	assert.Contains(t, out, "Kommentar hinzufügen...")
	assert.Contains(t, out, "Intern (nur für Admins)")
	assert.Contains(t, out, "💾 Änderungen speichern")
}

func TestRenderDetail_UnsafeScreenshotDropped(t *testing.T) {
	r, _ := newTestRenderer(t)
	shot := "javascript:alert(1)"
	detail := &dashboard.Detail{Item: models.FeedbackItem{ID: "x1", Message: "m", ScreenshotURL: &shot}}

	out := render(t, r, TemplateDetail, detail)

	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "🤖 AI-Analyse")
}

func TestRenderDetail_SolutionOptionsOutsideTier2(t *testing.T) {
	r, _ := newTestRenderer(t)
	detail := &dashboard.Detail{Item: models.FeedbackItem{
		ID:              "x1",
		Tier:            3,
		SolutionOptions: []models.SolutionOption{{ID: "opt-a", Label: "Variante A", RiskLevel: "medium"}},
	}}

	out := render(t, r, TemplateDetail, detail)

	assert.Contains(t, out, "Lösungsoptionen (Tier 2)")
	assert.Contains(t, out, "Variante A")
	assert.Contains(t, out, "Tier 3:")
}

func TestRenderDetail_UntieredItem(t *testing.T) {
	r, _ := newTestRenderer(t)
	detail := &dashboard.Detail{Item: models.FeedbackItem{ID: "x1"}, Tier: models.LookupTier(0)}

	out := render(t, r, TemplateDetail, detail)

	assert.Contains(t, out, "Tier -: "+models.LookupTier(0).Label)
	assert.NotContains(t, out, "Lösungsoptionen")
}

func TestRenderDetail_UserEmail(t *testing.T) {
	r, _ := newTestRenderer(t)

	out := render(t, r, TemplateDetail, &dashboard.Detail{Item: models.FeedbackItem{ID: "x1", UserEmail: "anna@example.com"}})
	assert.Contains(t, out, `<a href="mailto:anna@example.com">anna@example.com</a>`)

	out = render(t, r, TemplateDetail, &dashboard.Detail{Item: models.FeedbackItem{ID: "x2", UserEmail: "anna"}})
	assert.Contains(t, out, "<dt>User</dt><dd>anna</dd>")
	assert.NotContains(t, out, "mailto:")
}

func TestRenderRoutes(t *testing.T) {
	r, _ := newTestRenderer(t)

	out := render(t, r, TemplateRoutes, RoutesData{
		Service: "bea-feedback-console",
		Version: "dev",
		Routes: []RouteData{
			{Method: "GET", Path: "/health"},
			{Method: "POST", Path: "/feedback"},
		},
		MethodCounts: map[string]int{"GET": 1, "POST": 1},
	})

	assert.Contains(t, out, `<a href="/health">/health</a>`)
	assert.Contains(t, out, `<span class="method post">POST</span>`)
	assert.Contains(t, out, "2 Routen")
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, _ := newTestRenderer(t)
	var buf bytes.Buffer

	err := r.Render(&buf, "missing", nil)

	require.Error(t, err)
	assert.Empty(t, buf.String())
}
