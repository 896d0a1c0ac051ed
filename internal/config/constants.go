package config

import "time"

// Configuration file
const (
	ConfigFileEnv     = "BEA_CONFIG_FILE"
	DefaultConfigFile = "config.yaml"
)

// Defaults
const (
	DefaultPort               = "8080"
	DefaultServiceName        = "bea-feedback-console"
	DefaultFeedbackAPIBaseURL = "https://bea-lab-upload-production.up.railway.app"
)

// Widget limits
const (
	MaxMessageLength  = 2000
	MaxScreenshotSize = 5 * 1024 * 1024 // 5MB
	SuccessCloseDelay = 2 * time.Second
)

// Timeout constants
const (
	// Dashboard list refresh
	PollInterval = 30 * time.Second

	ServerShutdownTimeout        = 30 * time.Second
	ObservabilityShutdownTimeout = 5 * time.Second
	ReadHeaderTimeout            = 10 * time.Second
	CLIRequestTimeout            = 2 * time.Minute
	TestTimeout                  = 100 * time.Millisecond

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days
	// A session's widget and dashboard poller stop after this long without a request.
	// The dashboard script refreshes the list every poll interval, so open tabs stay alive.
	SessionIdleTimeout = 10 * time.Minute
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true

	SessionName = "bea-session"

	// SessionTokenKey is the session key holding the feedback API bearer credential
	SessionTokenKey = "bea_token"
)

// Security configuration constants
const (
	// Content Security Policy; screenshots are previewed as data: URLs
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data: https:;"
)
