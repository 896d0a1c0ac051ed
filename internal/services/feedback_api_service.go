package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Feedback API paths
const (
	submitPath        = "/api/feedback"
	adminFeedbackPath = "/api/admin/feedback"
	commentPathFmt    = "/api/feedback/%s/comment"
)

// FeedbackAPIService is the HTTP client for the remote feedback API
type FeedbackAPIService struct {
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
	metrics    *observability.Metrics
	schemas    *SchemaLoader
}

var _ serviceinterfaces.FeedbackAPI = (*FeedbackAPIService)(nil)

// NewFeedbackAPIService creates a client for the configured feedback API base URL
func NewFeedbackAPIService(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*FeedbackAPIService, error) {
	return NewFeedbackAPIServiceWithURL(cfg, logger, metrics, cfg.FeedbackAPI.BaseURL)
}

// NewFeedbackAPIServiceWithURL creates a client with a custom base URL (for testing)
func NewFeedbackAPIServiceWithURL(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics, baseURL string) (*FeedbackAPIService, error) {
	schemas, err := NewSchemaLoader()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &FeedbackAPIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.FeedbackAPI.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		logger:  logger,
		metrics: metrics,
		schemas: schemas,
	}, nil
}

// BaseURL returns the API base URL without a trailing slash
func (s *FeedbackAPIService) BaseURL() string {
	return s.baseURL
}

// Submit sends a new feedback item
func (s *FeedbackAPIService) Submit(ctx context.Context, submission models.Submission) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "submit",
		attribute.Bool("feedback.has_screenshot", submission.ScreenshotURL != nil),
		attribute.String("feedback.tab_context", submission.TabContext),
	)
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(submission); err != nil {
		return err
	}
	_, err = s.do(ctx, "submit", http.MethodPost, submitPath, submission)
	return err
}

// List fetches every feedback item in server order
func (s *FeedbackAPIService) List(ctx context.Context) (result []models.FeedbackItem, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "list")
	defer observability.FinishSpan(span, &err)

	body, err := s.do(ctx, "list", http.MethodGet, adminFeedbackPath, nil)
	if err != nil {
		return nil, err
	}
	if err := s.schemas.ValidateBody(SchemaFeedbackList, body); err != nil {
		s.logger.Error(ctx, "Feedback list failed schema validation", err, nil)
		return nil, err
	}

	var items []models.FeedbackItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, responseInvalid("failed to decode feedback list", err)
	}
	if items == nil {
		items = []models.FeedbackItem{}
	}
	span.SetAttributes(observability.AttributeItemCount(len(items)))
	return items, nil
}

// Update sets status and priority of an item
func (s *FeedbackAPIService) Update(ctx context.Context, id string, update models.FeedbackUpdate) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "update",
		observability.AttributeFeedbackID(id),
		observability.AttributeStatus(update.Status),
		observability.AttributePriority(update.Priority),
	)
	defer observability.FinishSpan(span, &err)

	if err := requireID(id); err != nil {
		return err
	}
	if err := contextutils.ValidateStruct(update); err != nil {
		return err
	}
	_, err = s.do(ctx, "update", http.MethodPatch, itemPath(id, ""), update)
	return err
}

// Approve approves or rejects an item
func (s *FeedbackAPIService) Approve(ctx context.Context, id string, req models.ApprovalRequest) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "approve",
		observability.AttributeFeedbackID(id),
		attribute.String("feedback.action", req.Action),
	)
	defer observability.FinishSpan(span, &err)

	if err := requireID(id); err != nil {
		return err
	}
	if err := contextutils.ValidateStruct(req); err != nil {
		return err
	}
	_, err = s.do(ctx, "approve", http.MethodPost, itemPath(id, "approve"), req)
	return err
}

// Triage re-runs the backend classification
func (s *FeedbackAPIService) Triage(ctx context.Context, id string) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "triage", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	if err := requireID(id); err != nil {
		return err
	}
	_, err = s.do(ctx, "triage", http.MethodPost, itemPath(id, "triage"), nil)
	return err
}

// CreateGitHubIssue creates a linked GitHub issue
func (s *FeedbackAPIService) CreateGitHubIssue(ctx context.Context, id string) (result *models.GitHubIssueResult, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "create_github_issue", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	if err := requireID(id); err != nil {
		return nil, err
	}
	body, err := s.do(ctx, "github", http.MethodPost, itemPath(id, "github"), nil)
	if err != nil {
		return nil, err
	}

	result = &models.GitHubIssueResult{}
	if err := s.decodeInto(SchemaGitHubIssue, body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetSolution fetches the stored AI solution
func (s *FeedbackAPIService) GetSolution(ctx context.Context, id string) (result *models.AISolution, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "get_solution", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	return s.solution(ctx, "get_solution", http.MethodGet, id)
}

// GenerateSolution asks the backend for a new AI solution
func (s *FeedbackAPIService) GenerateSolution(ctx context.Context, id string) (result *models.AISolution, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "generate_solution", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	return s.solution(ctx, "generate_solution", http.MethodPost, id)
}

func (s *FeedbackAPIService) solution(ctx context.Context, operation, method, id string) (*models.AISolution, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	body, err := s.do(ctx, operation, method, itemPath(id, "solution"), nil)
	if err != nil {
		return nil, err
	}

	result := &models.AISolution{}
	if err := s.decodeInto(SchemaAISolution, body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddComment posts a comment on an item
func (s *FeedbackAPIService) AddComment(ctx context.Context, id string, req models.CommentRequest) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "add_comment",
		observability.AttributeFeedbackID(id),
		attribute.Bool("comment.internal", req.IsInternal),
	)
	defer observability.FinishSpan(span, &err)

	if err := requireID(id); err != nil {
		return err
	}
	if err := contextutils.ValidateStruct(req); err != nil {
		return err
	}
	_, err = s.do(ctx, "comment", http.MethodPost, fmt.Sprintf(commentPathFmt, url.PathEscape(id)), req)
	return err
}

// decodeInto validates and decodes a JSON object body. An empty body leaves target untouched.
func (s *FeedbackAPIService) decodeInto(schemaName string, body []byte, target interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := s.schemas.ValidateBody(schemaName, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return responseInvalid("failed to decode "+schemaName+" response", err)
	}
	return nil
}

// do issues exactly one request and returns the body of a 2xx response
func (s *FeedbackAPIService) do(ctx context.Context, operation, method, path string, payload interface{}) (body []byte, err error) {
	defer func() {
		s.metrics.RecordAPICall(ctx, operation, observability.Outcome(err))
	}()

	var reader io.Reader
	if payload != nil {
		jsonData, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, contextutils.WrapError(marshalErr, "failed to marshal request body")
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create feedback API request")
	}

	requestID := contextutils.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Authorization", "Bearer "+contextutils.GetBearerTokenFromContext(ctx))
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		transportErr := transportError(err)
		s.logger.Error(ctx, "Feedback API request failed", err, map[string]interface{}{
			"operation":  operation,
			"method":     method,
			"path":       path,
			"request_id": requestID,
		})
		return nil, transportErr
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	trace.SpanFromContext(ctx).SetAttributes(observability.AttributeHTTPStatus(resp.StatusCode))

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := statusError(resp.StatusCode, body)
		s.logger.Warn(ctx, "Feedback API returned an error", map[string]interface{}{
			"operation":   operation,
			"status_code": resp.StatusCode,
			"detail":      statusErr.Details,
			"request_id":  requestID,
		})
		return nil, statusErr
	}
	return body, nil
}

// statusError maps a non-2xx response onto an AppError carrying the server detail.
// Details stays empty when the body has none so callers pick their own fallback.
func statusError(statusCode int, body []byte) *contextutils.AppError {
	var apiErr models.APIError
	if len(body) > 0 {
		if err := json.Unmarshal(body, &apiErr); err != nil {
			apiErr.Detail = ""
		}
	}
	detail := apiErr.Detail

	message := fmt.Sprintf("feedback API returned status %d", statusCode)
	switch statusCode {
	case http.StatusUnauthorized:
		return contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn, message, detail)
	case http.StatusForbidden:
		return contextutils.NewAppError(contextutils.ErrorCodeForbidden, contextutils.SeverityWarn, message, detail)
	case http.StatusNotFound:
		return contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo, message, detail)
	default:
		severity := contextutils.SeverityWarn
		if statusCode >= http.StatusInternalServerError {
			severity = contextutils.SeverityError
		}
		return contextutils.NewAppError(contextutils.ErrorCodeUpstream, severity, message, detail)
	}
}

// transportError wraps a failed round trip
func transportError(err error) *contextutils.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeTimeout, contextutils.SeverityWarn,
			"feedback API request timed out", "", err)
	}
	return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeServiceUnavailable, contextutils.SeverityError,
		"feedback API unreachable", "", err)
}

func responseInvalid(message string, cause error) *contextutils.AppError {
	return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeResponseInvalid, contextutils.SeverityError, message, "", cause)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn,
			"feedback id is required", "")
	}
	return nil
}

func itemPath(id, action string) string {
	p := adminFeedbackPath + "/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}
