package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
	"github.com/vijay-prabhu/inboxdomains/internal/scheduler"
)

var (
	scheduleSpec string
	scheduleWait bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Keep fetching on a schedule until the inbox is fully read",
	Long: `Schedule runs 'fetch --resume' on a cron schedule until every page
of the inbox has been read, then exits. A run that is still going when
the next one is due is skipped.

The schedule uses six fields, seconds first, or a descriptor.

Examples:
  inboxdomains schedule                          # uses schedule.cron
  inboxdomains schedule --cron "@every 10m"
  inboxdomains schedule --cron "0 0 * * * *" --wait`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "Cron schedule (default: schedule.cron from config)")
	scheduleCmd.Flags().BoolVar(&scheduleWait, "wait", false, "Wait for the first tick instead of fetching immediately")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.connect(ctx); err != nil {
		return friendly(err)
	}

	spec := a.cfg.Schedule.Cron
	if scheduleSpec != "" {
		spec = scheduleSpec
	}

	s, err := scheduler.New(a.controller(), scheduler.Options{
		Spec:           spec,
		RunImmediately: !scheduleWait,
		OnResult: func(r *fetcher.Result) {
			a.exportMetrics()
			fmt.Printf("Fetched %d, skipped %d, total %d across %d domains (more: %s)\n",
				r.FetchedThisBatch, r.Skipped, r.Aggregate.Total, len(r.Aggregate.Domains), yesNo(r.Aggregate.HasMore))
		},
	}, a.log)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching on schedule %q (Ctrl+C to stop)\n", spec)

	err = s.Run(ctx)
	switch {
	case err == nil:
		fmt.Println("Inbox fully read.")
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Println("Stopped.")
		return nil
	default:
		return friendly(err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
