package services

import (
	"testing"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaLoader_LoadsEmbeddedSchemas(t *testing.T) {
	loader, err := NewSchemaLoader()
	require.NoError(t, err)

	for _, name := range []string{SchemaFeedbackList, SchemaGitHubIssue, SchemaAISolution} {
		_, ok := loader.schemas[name]
		assert.True(t, ok, name)
	}
}

func TestSchemaLoader_ValidateBody(t *testing.T) {
	loader, err := NewSchemaLoader()
	require.NoError(t, err)

	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr bool
	}{
		{"list ok", SchemaFeedbackList, `[{"id":"a","status":"neu","tier":1}]`, false},
		{"list with nulls", SchemaFeedbackList, `[{"id":"a","tier":null,"solution_options":null}]`, false},
		{"list missing id", SchemaFeedbackList, `[{"message":"x"}]`, true},
		{"list numeric id", SchemaFeedbackList, `[{"id":5}]`, true},
		{"list not array", SchemaFeedbackList, `{"id":"a"}`, true},
		{"github ok", SchemaGitHubIssue, `{"github_url":"https://github.com/x"}`, false},
		{"solution bad steps", SchemaAISolution, `{"steps":"one"}`, true},
		{"not json", SchemaFeedbackList, `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.ValidateBody(tt.schema, []byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, contextutils.ErrorCodeResponseInvalid, contextutils.GetErrorCode(err))
		})
	}
}

func TestSchemaLoader_UnknownSchema(t *testing.T) {
	loader, err := NewSchemaLoader()
	require.NoError(t, err)

	assert.Error(t, loader.ValidateBody("nope", []byte(`{}`)))
}
