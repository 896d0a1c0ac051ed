package dashboard

import (
	"context"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// Action alert texts
const (
	actionErrorFallback = "Aktion fehlgeschlagen"
	networkAlert        = "Netzwerkfehler. Bitte versuche es später erneut."
	reasonRequired      = "Bitte gib einen Ablehnungsgrund an."
	commentRequired     = "Bitte gib einen Kommentar ein."
)

// Detail is the open detail view of one item
type Detail struct {
	Item     models.FeedbackItem
	Status   models.StatusInfo
	Priority models.PriorityInfo
	Tier     models.TierInfo
	// TierNote is the tier reason, or the tier description when the API gave none
	TierNote string
	Created  string
	Comments []models.Comment
	Solution *models.AISolution
}

// OpenDetail shows the detail view for a cached item
func (d *Dashboard) OpenDetail(ctx context.Context, id string) (result Detail, err error) {
	_, span := observability.TraceDashboardFunction(ctx, "open_detail", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.findLocked(id)
	if !ok {
		return Detail{}, contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo,
			"feedback not in list", id)
	}
	d.detailID = id
	return d.detailLocked(item), nil
}

// CloseDetail hides the detail view
func (d *Dashboard) CloseDetail() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detailID = ""
}

// DetailID returns the id of the open item, or ""
func (d *Dashboard) DetailID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detailID
}

// Detail returns the open detail built from the current cache. After a poll
// replaced the cache it shows the new data.
func (d *Dashboard) Detail() (Detail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.detailID == "" {
		return Detail{}, false
	}
	item, ok := d.findLocked(d.detailID)
	if !ok {
		return Detail{}, false
	}
	return d.detailLocked(item), true
}

func (d *Dashboard) detailLocked(item models.FeedbackItem) Detail {
	tier := models.LookupTier(item.Tier)
	note := item.TierReason
	if note == "" {
		note = tier.Description
	}
	return Detail{
		Item:     item,
		Status:   models.LookupStatus(item.Status),
		Priority: models.LookupPriority(item.Priority),
		Tier:     tier,
		TierNote: note,
		Created:  contextutils.FormatDetailDate(item.CreatedAt.Time),
		Comments: loadComments(item.ID),
		Solution: d.solutions[item.ID],
	}
}

// loadComments returns the comment thread. The API has no comment listing yet,
// so the thread is always empty.
func loadComments(string) []models.Comment {
	return []models.Comment{}
}

// Triage re-runs classification and reloads
func (d *Dashboard) Triage(ctx context.Context, id string) error {
	return d.mutate(ctx, "triage", id, func(ctx context.Context) error {
		return d.opts.API.Triage(ctx, id)
	})
}

// Approve approves with an optional note and reloads
func (d *Dashboard) Approve(ctx context.Context, id, note string) error {
	return d.mutate(ctx, "approve", id, func(ctx context.Context) error {
		return d.opts.API.Approve(ctx, id, models.ApprovalRequest{Action: models.ActionApprove, Note: note})
	})
}

// Reject rejects with a reason and reloads. An empty reason sends nothing.
func (d *Dashboard) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityInfo,
			"reject reason missing", reasonRequired)
	}
	return d.mutate(ctx, "reject", id, func(ctx context.Context) error {
		return d.opts.API.Approve(ctx, id, models.ApprovalRequest{Action: models.ActionReject, Note: reason})
	})
}

// SaveChanges sets status and priority, closes the detail view and reloads.
// Transitions are not checked here; the API decides what is legal.
func (d *Dashboard) SaveChanges(ctx context.Context, id, status, priority string) error {
	return d.mutate(ctx, "save_changes", id, func(ctx context.Context) error {
		if err := d.opts.API.Update(ctx, id, models.FeedbackUpdate{Status: status, Priority: priority}); err != nil {
			return err
		}
		d.CloseDetail()
		return nil
	})
}

// AddComment posts a comment and reloads. An empty comment sends nothing.
func (d *Dashboard) AddComment(ctx context.Context, id, text string, internal bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityInfo,
			"comment missing", commentRequired)
	}
	return d.mutate(ctx, "add_comment", id, func(ctx context.Context) error {
		return d.opts.API.AddComment(ctx, id, models.CommentRequest{Comment: text, IsInternal: internal})
	})
}

// LoadSolution fetches the stored AI solution and keeps it for the detail view
func (d *Dashboard) LoadSolution(ctx context.Context, id string) (result *models.AISolution, err error) {
	ctx, span := observability.TraceDashboardFunction(ctx, "load_solution", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	solution, err := d.opts.API.GetSolution(ctx, id)
	if err != nil {
		return nil, err
	}
	d.rememberSolution(id, solution)
	return solution, nil
}

// GenerateSolution asks for a new AI solution and reloads
func (d *Dashboard) GenerateSolution(ctx context.Context, id string) (*models.AISolution, error) {
	var solution *models.AISolution
	err := d.mutate(ctx, "generate_solution", id, func(ctx context.Context) error {
		var err error
		solution, err = d.opts.API.GenerateSolution(ctx, id)
		if err != nil {
			return err
		}
		d.rememberSolution(id, solution)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return solution, nil
}

// CreateGitHubIssue creates a linked issue, reloads and returns the issue URL
func (d *Dashboard) CreateGitHubIssue(ctx context.Context, id string) (string, error) {
	var issueURL string
	err := d.mutate(ctx, "create_github_issue", id, func(ctx context.Context) error {
		result, err := d.opts.API.CreateGitHubIssue(ctx, id)
		if err != nil {
			return err
		}
		if result != nil {
			issueURL = result.GitHubURL
		}
		return nil
	})
	return issueURL, err
}

func (d *Dashboard) rememberSolution(id string, solution *models.AISolution) {
	if solution == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.solutions[id] = solution
}

// mutate runs one API call and reloads the list on success. A failed call
// leaves the cache untouched and is not retried. A failed reload after a
// successful call only shows up as the list error.
func (d *Dashboard) mutate(ctx context.Context, action, id string, call func(context.Context) error) (err error) {
	ctx, span := observability.TraceDashboardFunction(ctx, action,
		observability.AttributeFeedbackID(id),
		attribute.String("dashboard.action", action),
	)
	defer observability.FinishSpan(span, &err)

	if err := call(ctx); err != nil {
		d.opts.Logger.Warn(ctx, "Dashboard action failed", map[string]interface{}{
			"action":      action,
			"feedback_id": id,
			"error":       err.Error(),
		})
		return err
	}

	d.opts.Logger.Info(ctx, "Dashboard action succeeded", map[string]interface{}{
		"action":      action,
		"feedback_id": id,
	})
	if loadErr := d.Load(ctx); loadErr != nil {
		span.SetAttributes(attribute.Bool("dashboard.reload_failed", true))
	}
	return nil
}

// AlertFor returns the alert text for a failed action
func AlertFor(err error) string {
	if err == nil {
		return ""
	}
	switch contextutils.GetErrorCode(err) {
	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeTimeout:
		return networkAlert
	case contextutils.ErrorCodeMissingRequired:
		return contextutils.UserMessage(err, actionErrorFallback)
	}
	return "Fehler: " + contextutils.UserMessage(err, actionErrorFallback)
}
