// Package mocks holds testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"

	"github.com/stretchr/testify/mock"
)

// MockFeedbackAPI implements serviceinterfaces.FeedbackAPI for testing
type MockFeedbackAPI struct {
	mock.Mock
}

var _ serviceinterfaces.FeedbackAPI = (*MockFeedbackAPI)(nil)

func (m *MockFeedbackAPI) Submit(ctx context.Context, submission models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockFeedbackAPI) List(ctx context.Context) (result0 []models.FeedbackItem, err error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]models.FeedbackItem); ok {
		result0 = items
	}
	return result0, args.Error(1)
}

func (m *MockFeedbackAPI) Update(ctx context.Context, id string, update models.FeedbackUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockFeedbackAPI) Approve(ctx context.Context, id string, req models.ApprovalRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockFeedbackAPI) Triage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedbackAPI) CreateGitHubIssue(ctx context.Context, id string) (result0 *models.GitHubIssueResult, err error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*models.GitHubIssueResult); ok {
		result0 = result
	}
	return result0, args.Error(1)
}

func (m *MockFeedbackAPI) GetSolution(ctx context.Context, id string) (result0 *models.AISolution, err error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*models.AISolution); ok {
		result0 = result
	}
	return result0, args.Error(1)
}

func (m *MockFeedbackAPI) GenerateSolution(ctx context.Context, id string) (result0 *models.AISolution, err error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*models.AISolution); ok {
		result0 = result
	}
	return result0, args.Error(1)
}

func (m *MockFeedbackAPI) AddComment(ctx context.Context, id string, req models.CommentRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}
