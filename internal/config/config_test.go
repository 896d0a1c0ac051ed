package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_LoadsFromYAML(t *testing.T) {
	tempFile := createTempConfigFile(t, `
server:
  port: "9090"
  session_secret: "test-secret"
  secure_cookies: true
  debug: true
  log_level: "debug"
  cors_origins:
    - "http://test:3000"
    - "http://test:3001"

feedback_api:
  base_url: "http://api.test/"
  timeout: "15s"

widget:
  max_message_length: 500
  max_screenshot_size: 1048576
  success_close_delay: "1s"

dashboard:
  poll_interval: "10s"

open_telemetry:
  endpoint: "test:4317"
  protocol: "http"
  insecure: false
  service_name: "test-service"
  enable_tracing: false
  enable_metrics: false
  enable_logging: false
  sampling_rate: 0.5
`)
	t.Setenv(ConfigFileEnv, tempFile)

	config, err := NewConfig()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "test-secret", config.Server.SessionSecret)
	assert.True(t, config.Server.SecureCookies)
	assert.True(t, config.Server.Debug)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, []string{"http://test:3000", "http://test:3001"}, config.Server.CORSOrigins)

	// trailing slash is trimmed
	assert.Equal(t, "http://api.test", config.FeedbackAPI.BaseURL)
	assert.Equal(t, 15*time.Second, config.FeedbackAPI.Timeout)

	assert.Equal(t, 500, config.Widget.MaxMessageLength)
	assert.Equal(t, int64(1048576), config.Widget.MaxScreenshotSize)
	assert.Equal(t, time.Second, config.Widget.SuccessCloseDelay)
	assert.Equal(t, 10*time.Second, config.Dashboard.PollInterval)

	assert.Equal(t, "test:4317", config.OpenTelemetry.Endpoint)
	assert.Equal(t, "http", config.OpenTelemetry.Protocol)
	assert.Equal(t, "test-service", config.OpenTelemetry.ServiceName)
	assert.Equal(t, 0.5, config.OpenTelemetry.SamplingRate)
}

func TestNewConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Chdir(t.TempDir())

	config, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, config.Server.Port)
	assert.Equal(t, DefaultFeedbackAPIBaseURL, config.FeedbackAPI.BaseURL)
	assert.Zero(t, config.FeedbackAPI.Timeout)
	assert.Equal(t, MaxMessageLength, config.Widget.MaxMessageLength)
	assert.Equal(t, int64(MaxScreenshotSize), config.Widget.MaxScreenshotSize)
	assert.Equal(t, SuccessCloseDelay, config.Widget.SuccessCloseDelay)
	assert.Equal(t, PollInterval, config.Dashboard.PollInterval)
	assert.Equal(t, SessionIdleTimeout, config.Server.IdleTimeout)
	assert.Equal(t, DefaultServiceName, config.OpenTelemetry.ServiceName)
}

func TestNewConfig_ExplicitFileNotFound(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	config, err := NewConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestNewConfig_EnvironmentVariableOverrides(t *testing.T) {
	tempFile := createTempConfigFile(t, `
server:
  port: "8080"
feedback_api:
  base_url: "http://from-file"
`)
	t.Setenv(ConfigFileEnv, tempFile)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("SERVER_DEBUG", "true")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a,http://b")
	t.Setenv("FEEDBACK_API_BASE_URL", "http://from-env")
	t.Setenv("FEEDBACK_API_TIMEOUT", "5s")
	t.Setenv("WIDGET_MAX_MESSAGE_LENGTH", "100")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "45s")
	t.Setenv("SERVER_IDLE_TIMEOUT", "3m")
	t.Setenv("OPEN_TELEMETRY_SAMPLING_RATE", "0.25")

	config, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", config.Server.Port)
	assert.True(t, config.Server.Debug)
	assert.Equal(t, []string{"http://a", "http://b"}, config.Server.CORSOrigins)
	assert.Equal(t, "http://from-env", config.FeedbackAPI.BaseURL)
	assert.Equal(t, 5*time.Second, config.FeedbackAPI.Timeout)
	assert.Equal(t, 3*time.Minute, config.Server.IdleTimeout)
	assert.Equal(t, 100, config.Widget.MaxMessageLength)
	assert.Equal(t, 45*time.Second, config.Dashboard.PollInterval)
	assert.Equal(t, 0.25, config.OpenTelemetry.SamplingRate)
}

func TestOverrideStructFromEnv_InvalidValuesAreIgnored(t *testing.T) {
	config := &Config{
		Server:    ServerConfig{Debug: true},
		Widget:    WidgetConfig{MaxMessageLength: 2000},
		Dashboard: DashboardConfig{PollInterval: time.Minute},
	}
	t.Setenv("SERVER_DEBUG", "not-a-bool")
	t.Setenv("WIDGET_MAX_MESSAGE_LENGTH", "many")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "soon")

	overrideStructFromEnv(config)

	assert.True(t, config.Server.Debug)
	assert.Equal(t, 2000, config.Widget.MaxMessageLength)
	assert.Equal(t, time.Minute, config.Dashboard.PollInterval)
}

func TestOverrideStructFromEnv_DurationNanoseconds(t *testing.T) {
	config := &Config{}
	t.Setenv("WIDGET_SUCCESS_CLOSE_DELAY", "1500000000")

	overrideStructFromEnv(config)

	assert.Equal(t, 1500*time.Millisecond, config.Widget.SuccessCloseDelay)
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, DefaultPort, config.Server.Port)
	assert.Equal(t, "info", config.Server.LogLevel)
	assert.Equal(t, "grpc", config.OpenTelemetry.Protocol)
	assert.Equal(t, 1.0, config.OpenTelemetry.SamplingRate)
}

func createTempConfigFile(t *testing.T, content string) string {
	tempFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	defer func() {
		if err := tempFile.Close(); err != nil {
			t.Logf("Failed to close temp file: %v", err)
		}
	}()

	_, err = tempFile.WriteString(content)
	require.NoError(t, err)

	return tempFile.Name()
}
