// Package commands holds the adm subcommands. Every command talks to the feedback
// API through the same widget and dashboard components the console uses.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"golang.org/x/term"
)

// TokenEnv names the environment variable holding the API token
const TokenEnv = "BEA_TOKEN"

// ErrTokenMissing is returned when no token was given and no terminal can be prompted
var ErrTokenMissing = contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
	"API token missing", "use --token, set "+TokenEnv+" or run in a terminal")

// Env is what every command needs
type Env struct {
	Config *config.Config
	Logger *observability.Logger
	API    serviceinterfaces.FeedbackAPI
	Out    io.Writer
	// JSON switches output to JSON documents
	JSON bool
	// RequestTimeout bounds one-shot commands; zero means no bound
	RequestTimeout time.Duration
}

// requestContext bounds a one-shot command
func (e *Env) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.RequestTimeout)
}

// newDashboard creates an unmounted dashboard; onRefresh may be nil
func (e *Env) newDashboard(interval time.Duration, onRefresh func(dashboard.Stats, error)) *dashboard.Dashboard {
	opts := dashboard.OptionsFromConfig(e.Config, e.API, e.Logger, nil)
	if interval > 0 {
		opts.PollInterval = interval
	}
	opts.OnRefresh = onRefresh
	return dashboard.New(opts)
}

func (e *Env) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ResolveToken picks the token from the flag, then the environment, then the prompt
func ResolveToken(flagValue string, getenv func(string) string, prompt func() (string, error)) (string, error) {
	if token := strings.TrimSpace(flagValue); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(getenv(TokenEnv)); token != "" {
		return token, nil
	}
	if prompt == nil {
		return "", ErrTokenMissing
	}
	token, err := prompt()
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// TerminalPrompt reads the token without echo. It fails when stdin is not a terminal.
func TerminalPrompt() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", ErrTokenMissing
	}
	fmt.Print("API Token: ")
	tokenBytes, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", contextutils.WrapError(err, "failed to read token")
	}
	return string(tokenBytes), nil
}
