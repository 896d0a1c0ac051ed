package commands

import (
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/spf13/cobra"
)

// ActionCommands returns the triage commands that act on one item
func ActionCommands(env *Env) []*cobra.Command {
	return []*cobra.Command{
		triageCmd(env),
		statusCmd(env),
		approveCmd(env),
		rejectCmd(env),
		commentCmd(env),
		solutionCmd(env),
		githubCmd(env),
	}
}

// actionError turns a failed dashboard action into the alert text shown in the console
func actionError(err error) error {
	if err == nil {
		return nil
	}
	return contextutils.WrapError(err, dashboard.AlertFor(err))
}

func (e *Env) done(id, text string) error {
	if e.JSON {
		return e.printJSON(map[string]string{"status": "ok", "id": id})
	}
	e.printf("✅ %s\n", text)
	return nil
}

func triageCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "triage ID",
		Short: "Re-run AI triage for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			if err := env.newDashboard(0, nil).Triage(ctx, args[0]); err != nil {
				return actionError(err)
			}
			return env.done(args[0], "Triage gestartet")
		},
	}
}

func statusCmd(env *Env) *cobra.Command {
	var status, priority string

	cmd := &cobra.Command{
		Use:   "status ID",
		Short: "Set status and priority of an item",
		Long: `Set status and priority of an item.

A value left out keeps the item's current one. Transitions are checked by the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if status == "" && priority == "" {
				return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn,
					"nothing to change", "use --status and/or --priority")
			}
			if status != "" && !models.IsKnownStatus(status) {
				return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
					"unknown status", status)
			}
			if priority != "" && !models.IsKnownPriority(priority) {
				return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
					"unknown priority", priority)
			}

			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			d := env.newDashboard(0, nil)
			if status == "" || priority == "" {
				if err := d.Load(ctx); err != nil {
					return contextutils.WrapError(err, d.ListError())
				}
				current, err := d.OpenDetail(ctx, id)
				if err != nil {
					return err
				}
				if status == "" {
					status = current.Item.Status
				}
				if priority == "" {
					priority = current.Item.Priority
				}
			}

			if err := d.SaveChanges(ctx, id, status, priority); err != nil {
				return actionError(err)
			}
			return env.done(id, "Status: "+models.LookupStatus(status).Label+", Priorität: "+models.LookupPriority(priority).Label)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "new status key")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority key")
	return cmd
}

func approveCmd(env *Env) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a waiting item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			if err := env.newDashboard(0, nil).Approve(ctx, args[0], strings.TrimSpace(note)); err != nil {
				return actionError(err)
			}
			return env.done(args[0], "Freigegeben")
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "optional approval note")
	return cmd
}

func rejectCmd(env *Env) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a waiting item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			if err := env.newDashboard(0, nil).Reject(ctx, args[0], reason); err != nil {
				return actionError(err)
			}
			return env.done(args[0], "Abgelehnt")
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	return cmd
}

func commentCmd(env *Env) *cobra.Command {
	var (
		text     string
		internal bool
	)

	cmd := &cobra.Command{
		Use:   "comment ID",
		Short: "Add a comment to an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			if err := env.newDashboard(0, nil).AddComment(ctx, args[0], text, internal); err != nil {
				return actionError(err)
			}
			return env.done(args[0], "Kommentar gesendet")
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "comment text")
	cmd.Flags().BoolVar(&internal, "internal", false, "visible to admins only")
	return cmd
}

func solutionCmd(env *Env) *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "solution ID",
		Short: "Show or generate the AI solution of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			d := env.newDashboard(0, nil)
			var (
				solution *models.AISolution
				err      error
			)
			if generate {
				solution, err = d.GenerateSolution(ctx, args[0])
			} else {
				solution, err = d.LoadSolution(ctx, args[0])
			}
			if err != nil {
				return actionError(err)
			}
			if env.JSON {
				return env.printJSON(solution)
			}
			printSolution(env, solution)
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a new solution")
	return cmd
}

func printSolution(env *Env, solution *models.AISolution) {
	if solution == nil {
		env.printf("Keine Lösung vorhanden\n")
		return
	}
	env.printf("🤖 AI-Lösung (Confidence: %d%%)\n\n", solution.ConfidencePercent())
	if solution.Analysis != "" {
		env.printf("Analyse:\n%s\n\n", solution.Analysis)
	}
	if solution.RootCause != "" {
		env.printf("Ursache:\n%s\n\n", solution.RootCause)
	}
	if len(solution.Steps) > 0 {
		env.printf("Schritte:\n")
		for i, step := range solution.Steps {
			env.printf("  %d. %s\n", i+1, step)
		}
		env.printf("\n")
	}
	if solution.Code != "" {
		env.printf("Code:\n%s\n", solution.Code)
	}
}

func githubCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "github ID",
		Short: "Create a GitHub issue for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			issueURL, err := env.newDashboard(0, nil).CreateGitHubIssue(ctx, args[0])
			if err != nil {
				return actionError(err)
			}
			if env.JSON {
				return env.printJSON(map[string]string{"github_url": issueURL})
			}
			env.printf("🔗 %s\n", issueURL)
			return nil
		},
	}
}
