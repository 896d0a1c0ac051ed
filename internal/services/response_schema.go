package services

import (
	"embed"
	"fmt"
	"path"
	"strings"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// Response schema names
const (
	SchemaFeedbackList = "feedback_list"
	SchemaGitHubIssue  = "github_issue"
	SchemaAISolution   = "ai_solution"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaLoader holds the compiled JSON schemas for feedback API responses
type SchemaLoader struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaLoader compiles every embedded response schema
func NewSchemaLoader() (*SchemaLoader, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to read embedded schemas")
	}

	sl := &SchemaLoader{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to read schema %s", entry.Name())
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to compile schema %s", entry.Name())
		}
		sl.schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
	}
	return sl, nil
}

// ValidateBody checks a raw response body against the named schema
func (sl *SchemaLoader) ValidateBody(schemaName string, body []byte) error {
	schema, exists := sl.schemas[schemaName]
	if !exists {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeResponseInvalid,
			contextutils.SeverityError,
			"feedback API response is not valid JSON",
			"",
			err,
		)
	}

	if !result.Valid() {
		validationErrors := make([]string, 0, len(result.Errors()))
		for _, validationErr := range result.Errors() {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.NewAppError(
			contextutils.ErrorCodeResponseInvalid,
			contextutils.SeverityError,
			fmt.Sprintf("%s response failed schema validation", schemaName),
			strings.Join(validationErrors, "; "),
		)
	}
	return nil
}
