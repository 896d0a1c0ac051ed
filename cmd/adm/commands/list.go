package commands

import (
	"text/tabwriter"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/spf13/cobra"
)

// listMessageLength is how much of the message the table shows
const listMessageLength = 60

// ListCommand returns the list command
func ListCommand(env *Env) *cobra.Command {
	var filters dashboard.Filters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback items",
		Long: `List feedback items in server order.

Filters combine; an empty filter matches everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if filters.Tier != "" {
				if _, ok := models.ParseTier(filters.Tier); !ok {
					return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
						"invalid tier", filters.Tier)
				}
			}

			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			d := env.newDashboard(0, nil)
			if err := d.Load(ctx); err != nil {
				return contextutils.WrapError(err, d.ListError())
			}
			d.SetFilters(filters)
			items := d.Visible()

			if env.JSON {
				return env.printJSON(items)
			}
			if len(items) == 0 {
				env.printf("Keine Feedbacks gefunden\n")
				return nil
			}
			return printItems(env, items)
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "filter by status key (e.g. neu, waiting_admin)")
	cmd.Flags().StringVar(&filters.Tier, "tier", "", "filter by tier (1-4)")
	cmd.Flags().StringVar(&filters.Priority, "priority", "", "filter by priority (critical, high, medium, low)")
	cmd.Flags().StringVar(&filters.Category, "category", "", "filter by category")
	return cmd
}

func printItems(env *Env, items []models.FeedbackItem) error {
	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	_, _ = tw.Write([]byte("ID\tSTATUS\tTIER\tPRIORITÄT\tKATEGORIE\tERSTELLT\tNACHRICHT\n"))
	for i := range items {
		card := dashboard.NewCard(&items[i])
		_, _ = tw.Write([]byte(card.ID + "\t" +
			card.Status.Icon + " " + card.Status.Label + "\t" +
			card.TierInfo.Label + "\t" +
			card.Priority.Label + "\t" +
			card.Category.Label + "\t" +
			card.Date + "\t" +
			dashboard.Truncate(items[i].Message, listMessageLength) + "\n"))
	}
	return tw.Flush()
}

// StatsCommand returns the stats command
func StatsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			d := env.newDashboard(0, nil)
			if err := d.Load(ctx); err != nil {
				return contextutils.WrapError(err, d.ListError())
			}
			stats := d.Stats()
			if env.JSON {
				return env.printJSON(statsJSON(stats))
			}
			printStats(env, stats)
			return nil
		},
	}
}

func statsJSON(stats dashboard.Stats) map[string]int {
	return map[string]int{
		"total":    stats.Total,
		"neu":      stats.Neu,
		"waiting":  stats.Waiting,
		"resolved": stats.Resolved,
	}
}

func printStats(env *Env, stats dashboard.Stats) {
	env.printf("Gesamt: %d  Neu: %d  Wartend: %d  Gelöst: %d\n", stats.Total, stats.Neu, stats.Waiting, stats.Resolved)
}
