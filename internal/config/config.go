// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the console
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Remote feedback API
	FeedbackAPI FeedbackAPIConfig `json:"feedback_api" yaml:"feedback_api"`

	// Widget limits
	Widget WidgetConfig `json:"widget" yaml:"widget"`

	// Dashboard behaviour
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	SecureCookies bool     `json:"secure_cookies" yaml:"secure_cookies"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
	// IdleTimeout is how long a session's widget and dashboard live without a request
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// FeedbackAPIConfig points the console at the remote feedback API.
// A zero Timeout means outbound requests never time out on their own.
type FeedbackAPIConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// WidgetConfig holds the feedback widget limits
type WidgetConfig struct {
	MaxMessageLength  int           `json:"max_message_length" yaml:"max_message_length"`
	MaxScreenshotSize int64         `json:"max_screenshot_size" yaml:"max_screenshot_size"`
	SuccessCloseDelay time.Duration `json:"success_close_delay" yaml:"success_close_delay"`
}

// DashboardConfig holds the admin dashboard settings
type DashboardConfig struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "bea-feedback-console"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"` // Auto SDK instead of the OTLP batch exporter
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables.
// Unset values fall back to the defaults in constants.go.
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	return config, nil
}

// Default returns a configuration holding only defaults
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = SessionIdleTimeout
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.FeedbackAPI.BaseURL == "" {
		c.FeedbackAPI.BaseURL = DefaultFeedbackAPIBaseURL
	}
	c.FeedbackAPI.BaseURL = strings.TrimRight(c.FeedbackAPI.BaseURL, "/")
	if c.Widget.MaxMessageLength <= 0 {
		c.Widget.MaxMessageLength = MaxMessageLength
	}
	if c.Widget.MaxScreenshotSize <= 0 {
		c.Widget.MaxScreenshotSize = MaxScreenshotSize
	}
	if c.Widget.SuccessCloseDelay <= 0 {
		c.Widget.SuccessCloseDelay = SuccessCloseDelay
	}
	if c.Dashboard.PollInterval <= 0 {
		c.Dashboard.PollInterval = PollInterval
	}
	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = DefaultServiceName
	}
	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.SamplingRate <= 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		// Durations accept "30s" style values as well as plain nanoseconds
		if field.Type() == durationType {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				} else if n, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(n)
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by BEA_CONFIG_FILE, or config.yaml.
// A missing default file is not an error; a missing explicit file is.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile(DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
