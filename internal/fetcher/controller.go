// Package fetcher runs one paginated fetch invocation: it lists message ids,
// retrieves their metadata at a paced rate, groups them by sender domain and
// persists the resulting aggregate.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
	"github.com/vijay-prabhu/inboxdomains/internal/cache"
	"github.com/vijay-prabhu/inboxdomains/internal/config"
	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

// ErrUnauthenticated is returned before any remote call when the provider
// holds no credential
var ErrUnauthenticated = fmt.Errorf("fetch requires sign-in: %w", email.ErrNotAuthenticated)

// ListError reports a failed list call. The invocation is abandoned and
// nothing is saved.
type ListError struct {
	PageToken string
	Err       error
}

func (e *ListError) Error() string {
	if e.PageToken == "" {
		return fmt.Sprintf("list messages: %v", e.Err)
	}
	return fmt.Sprintf("list messages (page %s): %v", e.PageToken, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// Options controls paging and pacing
type Options struct {
	Label          string
	MaxPerFetch    int
	PageSize       int
	BatchSize      int
	PageDelay      time.Duration
	BatchDelay     time.Duration
	RateLimitDelay time.Duration
	Headers        []string

	Pacer    Pacer            // nil means TimerPacer
	Recorder Recorder         // nil discards measurements
	Now      func() time.Time // nil means time.Now
}

// DefaultOptions returns the stock paging and pacing parameters
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Label:          cfg.Gmail.Label,
		MaxPerFetch:    cfg.Fetch.MaxPerFetch,
		PageSize:       cfg.Fetch.PageSize,
		BatchSize:      cfg.Fetch.BatchSize,
		PageDelay:      cfg.Fetch.PageDelay(),
		BatchDelay:     cfg.Fetch.BatchDelay(),
		RateLimitDelay: cfg.Fetch.RateLimitDelay(),
		Headers:        email.DefaultMetadataHeaders,
	}
}

// FetchOptions are the per-invocation parameters
type FetchOptions struct {
	// Resume continues from the stored cursor and merges into the stored
	// aggregate. Without it the fetch starts over from the newest message.
	Resume   bool
	Progress ProgressCallback // Optional progress callback
}

// Result is what one invocation produced
type Result struct {
	Aggregate *aggregate.Aggregate
	// FetchedThisBatch is the number of ids listed by this invocation
	FetchedThisBatch int
	Outcomes         []Outcome
	Skipped          int
	// Exhausted is set when the listing has no further pages
	Exhausted bool
	RunID     string
}

// Controller drives fetch invocations against one provider and one store
type Controller struct {
	provider email.Provider
	store    cache.Store
	opts     Options
	logger   *zap.Logger
}

// New creates a controller. A nil logger discards log output.
func New(provider email.Provider, store cache.Store, opts Options, logger *zap.Logger) *Controller {
	if opts.Pacer == nil {
		opts.Pacer = TimerPacer{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = config.MaxPageSize
	}
	if len(opts.Headers) == 0 {
		opts.Headers = email.DefaultMetadataHeaders
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		provider: provider,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Fetch runs one invocation. The store is written only when the invocation
// completes; a failed or cancelled invocation leaves it untouched.
func (c *Controller) Fetch(ctx context.Context, fo FetchOptions) (*Result, error) {
	runID := uuid.NewString()
	log := c.logger.With(zap.String("run_id", runID), zap.Bool("resume", fo.Resume))
	started := c.opts.Now()

	log.Info("fetch started", zap.String("provider", c.provider.Name()))

	result, err := c.fetch(ctx, fo, runID, log)
	elapsed := c.opts.Now().Sub(started)

	if err != nil {
		c.opts.Recorder.ObserveRun(runStatus(err), elapsed, 0, 0)
		log.Error("fetch failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	c.opts.Recorder.ObserveRun("ok", elapsed, result.Aggregate.Total, len(result.Aggregate.Domains))
	log.Info("fetch finished",
		zap.Int("fetched", result.FetchedThisBatch),
		zap.Int("skipped", result.Skipped),
		zap.Int("total", result.Aggregate.Total),
		zap.Int("domains", len(result.Aggregate.Domains)),
		zap.Bool("has_more", result.Aggregate.HasMore),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (c *Controller) fetch(ctx context.Context, fo FetchOptions, runID string, log *zap.Logger) (*Result, error) {
	if !c.provider.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	// Helper to report progress
	var phaseStart time.Time
	var lastPhase ProgressPhase
	report := func(phase ProgressPhase, current, total int, desc string) {
		if fo.Progress == nil {
			return
		}
		if phase != lastPhase {
			phaseStart = c.opts.Now()
			lastPhase = phase
		}
		fo.Progress(Progress{
			Phase:       phase,
			Current:     current,
			Total:       total,
			Description: desc,
			StartedAt:   phaseStart,
		})
	}

	var prior *aggregate.Aggregate
	if fo.Resume {
		var err error
		prior, err = c.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		if prior != nil && !prior.HasMore {
			log.Info("stored aggregate is exhausted, nothing to list")
			return &Result{Aggregate: prior, Exhausted: true, RunID: runID}, nil
		}
	}

	cursor := ""
	if prior != nil {
		cursor = prior.Cursor()
	}

	ids, next, err := c.listIDs(ctx, cursor, report)
	if err != nil {
		return nil, err
	}
	log.Debug("listing complete", zap.Int("ids", len(ids)), zap.Bool("more", next != ""))

	outcomes, err := c.fetchMetadata(ctx, ids, report, log)
	if err != nil {
		return nil, err
	}

	report(PhaseMerging, 0, 0, "Grouping by sender domain")

	tagged := make([]aggregate.Tagged, 0, len(outcomes))
	skipped := 0
	for _, o := range outcomes {
		if o.Skip != nil {
			skipped++
			continue
		}
		tagged = append(tagged, aggregate.Tagged{Domain: o.Domain, Record: *o.Record})
	}
	buckets := aggregate.Bucketize(tagged)

	agg := aggregate.New()
	if prior != nil {
		agg.Domains = aggregate.Merge(prior.Domains, buckets)
		agg.Total = prior.Total + countNew(ids, prior.IDs())
	} else {
		aggregate.SortByCount(buckets)
		agg.Domains = buckets
		agg.Total = countNew(ids, nil)
	}
	agg.SetCursor(next)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(PhaseSaving, 0, 0, "Saving aggregate")
	if err := c.store.Save(ctx, agg); err != nil {
		return nil, err
	}

	return &Result{
		Aggregate:        agg,
		FetchedThisBatch: len(ids),
		Outcomes:         outcomes,
		Skipped:          skipped,
		Exhausted:        !agg.HasMore,
		RunID:            runID,
	}, nil
}

// pause waits d and reports it. It returns ctx.Err() if the wait was cut short.
func (c *Controller) pause(ctx context.Context, kind string, d time.Duration) error {
	c.opts.Recorder.ObservePause(kind, d)
	return c.opts.Pacer.Sleep(ctx, d)
}

// countNew counts distinct ids not present in known
func countNew(ids []string, known map[string]struct{}) int {
	seen := make(map[string]struct{}, len(ids))
	n := 0
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; ok {
			continue
		}
		n++
	}
	return n
}

func runStatus(err error) string {
	var le *ListError
	var se *cache.StorageError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.As(err, &le):
		return "list_error"
	case errors.As(err, &se):
		return "storage_error"
	default:
		return "error"
	}
}
