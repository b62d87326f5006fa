package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
	"github.com/vijay-prabhu/inboxdomains/internal/output"
)

var fetchResume bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch message metadata and group it by sender domain",
	Long: `Fetch lists messages in your inbox, newest first, reads their
From/Subject/Date headers and groups them by sender domain.

Without --resume the cached results are replaced. With --resume the
fetch continues after the last message read and merges into the cache.

Examples:
  inboxdomains fetch             # start over from the newest message
  inboxdomains fetch --resume    # read the next batch
  inboxdomains fetch -o json     # print the aggregate as JSON`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchResume, "resume", false, "Continue from the cached position and merge results")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.connect(ctx); err != nil {
		return friendly(err)
	}

	opts := fetcher.FetchOptions{Resume: fetchResume}
	terminal := NewTerminal()
	if outputFmt != "json" {
		opts.Progress = progressPrinter(terminal)
	}

	result, err := a.controller().Fetch(ctx, opts)
	a.exportMetrics()

	// Clear progress line
	terminal.ClearLine()

	if err != nil {
		return fmt.Errorf("fetch failed: %w", friendly(err))
	}

	return output.Output(outputFmt, summaryOf(result))
}

func summaryOf(r *fetcher.Result) *output.FetchSummary {
	return &output.FetchSummary{
		Aggregate:        r.Aggregate,
		FetchedThisBatch: r.FetchedThisBatch,
		Skipped:          r.Skipped,
		RunID:            r.RunID,
		Exhausted:        r.Exhausted,
	}
}

// progressPrinter renders fetch progress on one updating line in a terminal,
// or one line per phase otherwise
func progressPrinter(terminal *Terminal) fetcher.ProgressCallback {
	var lastPhase fetcher.ProgressPhase

	return func(p fetcher.Progress) {
		// Clear the line if we're in a terminal
		terminal.ClearLine()

		var msg, eta string
		switch p.Phase {
		case fetcher.PhaseListing:
			if p.Current > 0 {
				msg = fmt.Sprintf("Listing messages: %d found", p.Current)
			} else {
				msg = fmt.Sprintf("%s Listing messages...", terminal.Spinner())
			}
		case fetcher.PhaseFetching:
			if etaDur := p.ETA(); etaDur > 0 {
				eta = fmt.Sprintf(" (ETA: %s)", FormatETA(etaDur))
			}
			msg = fmt.Sprintf("Reading headers: %d/%d (%d%%)%s", p.Current, p.Total, p.Percentage(), eta)
		case fetcher.PhaseMerging:
			msg = fmt.Sprintf("%s Grouping by domain...", terminal.Spinner())
		case fetcher.PhaseSaving:
			msg = fmt.Sprintf("%s Saving...", terminal.Spinner())
		}

		msg = terminal.Color(PhaseColor(string(p.Phase)), msg)

		if terminal.IsTerminal {
			fmt.Print(msg)
			terminal.Flush()
		} else {
			// For non-terminals, print on phase change or every 100 messages
			shouldPrint := p.Phase != lastPhase
			if p.Phase == fetcher.PhaseFetching {
				shouldPrint = shouldPrint || p.Current%100 == 0 || p.Current == p.Total
			}
			if shouldPrint {
				fmt.Println(msg)
			}
		}
		lastPhase = p.Phase
	}
}
