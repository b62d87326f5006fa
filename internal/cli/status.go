package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/inboxdomains/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and cache state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	status := &output.Status{Authenticated: a.provider.IsAuthenticated()}

	agg, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if agg != nil {
		status.HasCache = true
		status.CachedTotal = agg.Total
		status.Domains = len(agg.Domains)
		status.HasMore = agg.HasMore
		if !agg.CachedAt.IsZero() {
			at := agg.CachedAt.Time
			status.CachedAt = &at
		}
	}

	return output.Output(outputFmt, status)
}
