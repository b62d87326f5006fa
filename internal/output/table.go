package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

// Status describes sign-in and cache state
type Status struct {
	Authenticated bool       `json:"authenticated"`
	HasCache      bool       `json:"has_cache"`
	CachedAt      *time.Time `json:"cached_at"`
	CachedTotal   int        `json:"cached_total"`
	Domains       int        `json:"domains"`
	HasMore       bool       `json:"has_more"`
}

// FetchSummary is the outcome of one fetch invocation. In JSON it is the
// aggregate with the per-invocation counters alongside.
type FetchSummary struct {
	*aggregate.Aggregate
	FetchedThisBatch int    `json:"fetched_this_batch"`
	Skipped          int    `json:"skipped"`
	RunID            string `json:"run_id,omitempty"`
	Exhausted        bool   `json:"-"`
}

// DomainLimit caps the rows printed by the domains table. 0 prints all.
var DomainLimit = 25

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *aggregate.Aggregate:
		return aggregateTable(w, v, DomainLimit)
	case *Status:
		return statusDetail(w, v)
	case *FetchSummary:
		return fetchSummary(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func aggregateTable(w io.Writer, agg *aggregate.Aggregate, limit int) error {
	fmt.Fprintf(w, "Total messages: %d\n", agg.Total)
	if !agg.CachedAt.IsZero() {
		fmt.Fprintf(w, "Cached:         %s (%s)\n", agg.CachedAt.Local().Format("Jan 02, 2006 15:04"), formatAge(time.Since(agg.CachedAt.Time)))
	}
	if agg.HasMore {
		fmt.Fprintln(w, "More available: yes (run 'inboxdomains fetch --resume')")
	}
	fmt.Fprintln(w)

	return DomainsTable(w, agg.Domains, limit)
}

// DomainsTable renders one row per domain, largest first
func DomainsTable(w io.Writer, domains []aggregate.DomainBucket, limit int) error {
	if len(domains) == 0 {
		fmt.Fprintln(w, "No domains found.")
		return nil
	}

	shown := domains
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([][]string, 0, len(shown))
	for i, d := range shown {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncate(d.Domain, 40),
			strconv.Itoa(d.Count),
			truncate(topSender(d), 25),
			truncate(latestSubject(d), 40),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Domain", "Emails", "Top Sender", "Latest Subject")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if hidden := len(domains) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "... and %d more domains (use -o json for all)\n", hidden)
	}
	return nil
}

func statusDetail(w io.Writer, s *Status) error {
	auth := "no (run 'inboxdomains auth login')"
	if s.Authenticated {
		auth = "yes"
	}
	fmt.Fprintf(w, "Signed in:   %s\n", auth)

	if !s.HasCache {
		fmt.Fprintln(w, "Cache:       empty")
		return nil
	}

	fmt.Fprintf(w, "Cache:       %d messages across %d domains\n", s.CachedTotal, s.Domains)
	if s.CachedAt != nil {
		fmt.Fprintf(w, "Cached at:   %s (%s)\n", s.CachedAt.Local().Format("Jan 02, 2006 15:04"), formatAge(time.Since(*s.CachedAt)))
	}
	fmt.Fprintf(w, "More:        %s\n", yesNo(s.HasMore))
	return nil
}

func fetchSummary(w io.Writer, s *FetchSummary) error {
	if s.Exhausted && s.FetchedThisBatch == 0 {
		fmt.Fprintln(w, "Nothing new to fetch: every page has already been read.")
	} else {
		fmt.Fprintln(w, "Fetch complete:")
		fmt.Fprintf(w, "  Messages listed:  %d\n", s.FetchedThisBatch)
		if s.Skipped > 0 {
			fmt.Fprintf(w, "  Skipped:          %d\n", s.Skipped)
		}
	}
	fmt.Fprintf(w, "  Running total:    %d\n", s.Total)
	fmt.Fprintf(w, "  Domains:          %d\n", len(s.Domains))
	fmt.Fprintf(w, "  More available:   %s\n", yesNo(s.HasMore))
	fmt.Fprintln(w)

	return DomainsTable(w, s.Domains, 10)
}

// topSender returns the most frequent sender name within a bucket
func topSender(d aggregate.DomainBucket) string {
	counts := make(map[string]int)
	best, bestN := "", 0
	for _, e := range d.Emails {
		counts[e.SenderName]++
		if n := counts[e.SenderName]; n > bestN {
			best, bestN = e.SenderName, n
		}
	}
	return best
}

func latestSubject(d aggregate.DomainBucket) string {
	if len(d.Emails) == 0 {
		return ""
	}
	return d.Emails[0].Subject
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
