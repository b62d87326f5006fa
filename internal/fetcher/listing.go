package fetcher

import (
	"context"

	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

type reportFunc func(phase ProgressPhase, current, total int, desc string)

// listIDs collects up to MaxPerFetch ids starting at cursor. It returns the
// ids in listing order and the cursor for the following page, "" when the
// listing is exhausted.
func (c *Controller) listIDs(ctx context.Context, cursor string, report reportFunc) ([]string, string, error) {
	var ids []string
	report(PhaseListing, 0, 0, "Listing messages")

	for len(ids) < c.opts.MaxPerFetch {
		remaining := c.opts.MaxPerFetch - len(ids)
		page, err := c.provider.ListMessages(ctx, email.ListRequest{
			Label:      c.opts.Label,
			MaxResults: min(c.opts.PageSize, remaining),
			PageToken:  cursor,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			return nil, "", &ListError{PageToken: cursor, Err: err}
		}

		c.opts.Recorder.ObservePage(len(page.IDs))
		ids = append(ids, page.IDs...)
		cursor = page.NextPageToken
		report(PhaseListing, len(ids), 0, "Listing messages")

		// An empty page makes no progress toward the quota; stop and leave
		// its cursor for the next invocation.
		if cursor == "" || len(page.IDs) == 0 || len(ids) >= c.opts.MaxPerFetch {
			break
		}
		if err := c.pause(ctx, PausePage, c.opts.PageDelay); err != nil {
			return nil, "", err
		}
	}

	return ids, cursor, nil
}
