package models

import (
	"encoding/json"
	"strings"
)

// FeedbackItem is one feedback record as the feedback API returns it.
// The API assigns ID, Status and Tier; unknown fields are ignored.
type FeedbackItem struct {
	ID                   string           `json:"id"`
	Message              string           `json:"message"`
	ScreenshotURL        *string          `json:"screenshot_url,omitempty"`
	Status               string           `json:"status"`
	Tier                 int              `json:"tier"`
	TierReason           string           `json:"tier_reason,omitempty"`
	Priority             string           `json:"priority"`
	Category             string           `json:"category"`
	AISummary            string           `json:"ai_summary,omitempty"`
	AISolutionCode       string           `json:"ai_solution_code,omitempty"`
	AISolutionConfidence *float64         `json:"ai_solution_confidence,omitempty"`
	SolutionOptions      []SolutionOption `json:"solution_options,omitempty"`
	UserSelectedOption   string           `json:"user_selected_option,omitempty"`
	TabContext           string           `json:"tab_context,omitempty"`
	ScreenSize           string           `json:"screen_size,omitempty"`
	BrowserInfo          string           `json:"browser_info,omitempty"`
	PageURL              string           `json:"page_url,omitempty"`
	UserEmail            string           `json:"user_email,omitempty"`
	CreatedAt            Timestamp        `json:"created_at"`
}

// SolutionOption is one of the choices offered for tier 2 items
type SolutionOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	RiskLevel   string `json:"risk_level"`
}

// HasScreenshot reports whether the item carries an inline screenshot
func (f *FeedbackItem) HasScreenshot() bool {
	return f.ScreenshotURL != nil && *f.ScreenshotURL != ""
}

// ShortID returns the first eight characters of the id, used in detail headings
func (f *FeedbackItem) ShortID() string {
	if len(f.ID) <= 8 {
		return f.ID
	}
	return f.ID[:8]
}

// ConfidencePercent returns the AI solution confidence as a rounded percentage
func (f *FeedbackItem) ConfidencePercent() int {
	if f.AISolutionConfidence == nil {
		return 0
	}
	return int(*f.AISolutionConfidence*100 + 0.5)
}

// IsWaiting reports whether the item waits for a user, admin or owner decision
func (f *FeedbackItem) IsWaiting() bool {
	return IsWaiting(f.Status)
}

// Submission is the body of POST /api/feedback.
// ScreenshotURL is serialised as null when no screenshot is attached.
type Submission struct {
	Message       string  `json:"message" validate:"required"`
	ScreenshotURL *string `json:"screenshot_url"`
	TabContext    string  `json:"tab_context"`
	ScreenSize    string  `json:"screen_size"`
	BrowserInfo   string  `json:"browser_info"`
	PageURL       string  `json:"page_url"`
}

// FeedbackUpdate is the body of PATCH /api/admin/feedback/{id}
type FeedbackUpdate struct {
	Status   string `json:"status" validate:"required,oneof=neu triaged waiting_user waiting_admin waiting_owner in_arbeit testing geloest abgelehnt"`
	Priority string `json:"priority" validate:"required,oneof=critical high medium low"`
}

// Approval actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ApprovalRequest is the body of POST /api/admin/feedback/{id}/approve.
// A rejection always carries its reason in Note.
type ApprovalRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note" validate:"required_if=Action reject"`
}

// CommentRequest is the body of POST /api/feedback/{id}/comment
type CommentRequest struct {
	Comment    string `json:"comment" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// Comment is one entry of an item's comment thread
type Comment struct {
	ID         string    `json:"id"`
	Comment    string    `json:"comment"`
	IsInternal bool      `json:"is_internal"`
	Author     string    `json:"author,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

// AISolution is the generated solution proposal for an item
type AISolution struct {
	Analysis   string   `json:"analysis"`
	RootCause  string   `json:"root_cause"`
	Steps      []string `json:"steps"`
	Code       string   `json:"code"`
	Confidence float64  `json:"confidence"`
}

// ConfidencePercent returns the confidence as a rounded percentage
func (s *AISolution) ConfidencePercent() int {
	return int(s.Confidence*100 + 0.5)
}

// GitHubIssueResult is returned after an issue has been created
type GitHubIssueResult struct {
	GitHubURL string `json:"github_url"`
}

// APIError is the error body of the feedback API.
// Detail is usually a string; validation failures carry a list of {msg} objects.
type APIError struct {
	Detail string `json:"-"`
}

// UnmarshalJSON accepts both string and list shaped detail values
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Detail) == 0 || string(raw.Detail) == "null" {
		return nil
	}

	var detail string
	if err := json.Unmarshal(raw.Detail, &detail); err == nil {
		e.Detail = detail
		return nil
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		e.Detail = strings.Join(msgs, "; ")
		return nil
	}

	e.Detail = string(raw.Detail)
	return nil
}

// MarshalJSON writes the {"detail": ...} shape
func (e APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"detail": e.Detail})
}
