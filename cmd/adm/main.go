// Package main provides the adm CLI: list, triage and watch feedback from a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/cmd/adm/commands"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/services"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/version"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "bea-adm", cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	api, err := services.NewFeedbackAPIService(cfg, logger, nil)
	if err != nil {
		logger.Error(ctx, "Failed to create feedback API client", err, map[string]interface{}{"base_url": cfg.FeedbackAPI.BaseURL})
		os.Exit(1)
	}

	env := &commands.Env{
		Config:         cfg,
		Logger:         logger,
		API:            api,
		Out:            os.Stdout,
		RequestTimeout: config.CLIRequestTimeout,
	}

	if err := newRootCommand(env).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(env *commands.Env) *cobra.Command {
	var token string

	rootCmd := &cobra.Command{
		Use:     "adm",
		Short:   "Feedback administration tool",
		Version: version.String(),
		Long: `Feedback administration tool

Lists, triages and watches feedback through the feedback API, using the same
components as the web console. The API token comes from --token, ` + commands.TokenEnv + `
or a prompt.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// the bare root command only prints help
			if cmd == cmd.Root() {
				return nil
			}
			resolved, err := commands.ResolveToken(token, os.Getenv, commands.TerminalPrompt)
			if err != nil {
				return err
			}
			env.Logger.Debug(cmd.Context(), "Using API token", map[string]interface{}{"token": contextutils.MaskToken(resolved)})
			cmd.SetContext(contextutils.WithBearerToken(cmd.Context(), resolved))
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&token, "token", "", "feedback API bearer token")
	rootCmd.PersistentFlags().BoolVar(&env.JSON, "json", false, "print JSON")

	rootCmd.AddCommand(commands.ListCommand(env))
	rootCmd.AddCommand(commands.StatsCommand(env))
	rootCmd.AddCommand(commands.SubmitCommand(env))
	rootCmd.AddCommand(commands.ActionCommands(env)...)
	rootCmd.AddCommand(commands.WatchCommand(env))
	return rootCmd
}
