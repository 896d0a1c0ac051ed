package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"

	"github.com/spf13/cobra"
)

// WatchCommand returns the watch command
func WatchCommand(env *Env) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the feedback list and print the counters",
		Long: `Mount a dashboard and print the counters after every load until interrupted.

A failed poll prints the list error; the last counters stay valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, env, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	return cmd
}

// watch runs until ctx is done
func watch(ctx context.Context, env *Env, interval time.Duration) error {
	var d *dashboard.Dashboard
	d = env.newDashboard(interval, func(stats dashboard.Stats, err error) {
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			env.printf("%s ⚠️  %s\n", stamp, d.ListError())
			return
		}
		if env.JSON {
			_ = env.printJSON(statsJSON(stats))
			return
		}
		env.printf("%s ", stamp)
		printStats(env, stats)
	})

	// a failed first load is printed and polling continues
	_ = d.Mount(ctx)
	<-ctx.Done()
	d.Unmount()
	return nil
}
