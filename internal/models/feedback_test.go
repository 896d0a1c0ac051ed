package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackItem_DecodeIgnoresUnknownFields(t *testing.T) {
	body := `{
		"id": "3f2a9c1e-77aa-4b1d-9c0e-123456789abc",
		"message": "Button is broken",
		"screenshot_url": null,
		"status": "waiting_admin",
		"tier": 3,
		"tier_reason": "Betrifft alle Nutzer",
		"priority": "high",
		"category": "bug",
		"ai_solution_confidence": 0.856,
		"solution_options": [{"id": "a", "label": "Fix", "description": "Patch", "risk_level": "low"}],
		"created_at": "2025-03-07T09:05:03.123456",
		"internal_score": 42
	}`

	var item FeedbackItem
	require.NoError(t, json.Unmarshal([]byte(body), &item))

	assert.Equal(t, "3f2a9c1e", item.ShortID())
	assert.False(t, item.HasScreenshot())
	assert.True(t, item.IsWaiting())
	assert.Equal(t, 86, item.ConfidencePercent())
	require.Len(t, item.SolutionOptions, 1)
	assert.Equal(t, "low", item.SolutionOptions[0].RiskLevel)
	assert.Equal(t, time.Date(2025, 3, 7, 9, 5, 3, 123456000, time.UTC), item.CreatedAt.Time)
}

func TestTimestamp_Formats(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{`"2025-03-07T09:05:03Z"`, time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)},
		{`"2025-03-07T10:05:03+01:00"`, time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)},
		{`"2025-03-07T09:05:03"`, time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)},
		{`"2025-03-07 09:05:03.5"`, time.Date(2025, 3, 7, 9, 5, 3, 500000000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.expected.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.True(t, ts.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))

	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestSubmission_NullScreenshot(t *testing.T) {
	out, err := json.Marshal(Submission{Message: "Button is broken", TabContext: "Dashboard"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"message": "Button is broken",
		"screenshot_url": null,
		"tab_context": "Dashboard",
		"screen_size": "",
		"browser_info": "",
		"page_url": ""
	}`, string(out))
}

func TestAPIError_Detail(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"string detail", `{"detail": "Feedback not found"}`, "Feedback not found"},
		{"validation list", `{"detail": [{"loc": ["body","message"], "msg": "field required"}, {"msg": "too long"}]}`, "field required; too long"},
		{"missing detail", `{"error": "nope"}`, ""},
		{"null detail", `{"detail": null}`, ""},
		{"object detail", `{"detail": {"reason": "x"}}`, `{"reason": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr APIError
			require.NoError(t, json.Unmarshal([]byte(tt.body), &apiErr))
			assert.Equal(t, tt.expected, apiErr.Detail)
		})
	}
}
