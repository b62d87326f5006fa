package fetcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

// fetchMetadata retrieves metadata for ids in order. Per-message failures
// become Skip outcomes; only cancellation aborts the loop.
func (c *Controller) fetchMetadata(ctx context.Context, ids []string, report reportFunc, log *zap.Logger) ([]Outcome, error) {
	n := len(ids)
	outcomes := make([]Outcome, 0, n)
	report(PhaseFetching, 0, n, "Retrieving message metadata")

	for i, id := range ids {
		pos := i + 1

		md, err := c.provider.GetMetadata(ctx, email.MetadataRequest{
			ID:             id,
			Headers:        c.opts.Headers,
			IncludeSnippet: true,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			kind := SkipUpstreamError
			if isRateLimited(err) {
				kind = SkipRateLimited
			}
			log.Warn("skipping message",
				zap.String("message_id", id),
				zap.String("reason", string(kind)),
				zap.Error(err),
			)
			outcomes = append(outcomes, Outcome{ID: id, Skip: &Skip{Kind: kind, Err: err}})
			c.opts.Recorder.ObserveMessage(string(kind))

			if kind == SkipRateLimited {
				if err := c.pause(ctx, PauseRateLimit, c.opts.RateLimitDelay); err != nil {
					return nil, err
				}
			}
		} else {
			domain, record := recordFrom(id, md)
			outcomes = append(outcomes, Outcome{ID: id, Domain: domain, Record: &record})
			c.opts.Recorder.ObserveMessage(outcomeOK)
		}

		report(PhaseFetching, pos, n, "Retrieving message metadata")

		if pos%c.opts.BatchSize == 0 && pos < n {
			if err := c.pause(ctx, PauseBatch, c.opts.BatchDelay); err != nil {
				return nil, err
			}
		}
	}

	return outcomes, nil
}
