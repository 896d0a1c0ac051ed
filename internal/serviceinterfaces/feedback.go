// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"
	"html/template"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
)

// FeedbackAPI is the remote feedback API as seen by the widget, the dashboard and the CLI.
// Every call reads the bearer credential from ctx and issues exactly one HTTP request.
type FeedbackAPI interface {
	// Submit sends a new feedback item (POST /api/feedback)
	Submit(ctx context.Context, submission models.Submission) error
	// List fetches every feedback item in server order (GET /api/admin/feedback)
	List(ctx context.Context) ([]models.FeedbackItem, error)
	// Update sets status and priority (PATCH /api/admin/feedback/{id})
	Update(ctx context.Context, id string, update models.FeedbackUpdate) error
	// Approve approves or rejects with a note (POST /api/admin/feedback/{id}/approve)
	Approve(ctx context.Context, id string, req models.ApprovalRequest) error
	// Triage re-runs classification (POST /api/admin/feedback/{id}/triage)
	Triage(ctx context.Context, id string) error
	// CreateGitHubIssue links a new GitHub issue (POST /api/admin/feedback/{id}/github)
	CreateGitHubIssue(ctx context.Context, id string) (*models.GitHubIssueResult, error)
	// GetSolution fetches the AI solution (GET /api/admin/feedback/{id}/solution)
	GetSolution(ctx context.Context, id string) (*models.AISolution, error)
	// GenerateSolution asks for a new AI solution (POST /api/admin/feedback/{id}/solution)
	GenerateSolution(ctx context.Context, id string) (*models.AISolution, error)
	// AddComment posts a comment (POST /api/feedback/{id}/comment)
	AddComment(ctx context.Context, id string, req models.CommentRequest) error
}

// MarkdownRenderer turns untrusted markdown into sanitized HTML
type MarkdownRenderer interface {
	Render(markdown string) template.HTML
}
