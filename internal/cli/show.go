package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/inboxdomains/internal/output"
)

var showLimit int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cached results",
	Long: `Show the cached domain breakdown without contacting Gmail.

Examples:
  inboxdomains show              # top 25 domains
  inboxdomains show --limit 0    # every domain
  inboxdomains show -o json      # full aggregate, including messages`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 25, "Maximum domains to list in table output (0 for all)")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	agg, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if agg == nil {
		return errors.New("no cached results (run 'inboxdomains fetch' first)")
	}

	output.DomainLimit = showLimit
	return output.Output(outputFmt, agg)
}
