// Package scheduler repeats continuation fetches on a cron schedule until the
// listing is exhausted.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
)

// Fetcher runs one fetch invocation
type Fetcher interface {
	Fetch(ctx context.Context, opts fetcher.FetchOptions) (*fetcher.Result, error)
}

// Options controls a scheduled run
type Options struct {
	// Spec is a seconds-first cron expression, e.g. "0 */30 * * * *"
	Spec string
	// RunImmediately runs the first fetch without waiting for the schedule
	RunImmediately bool
	// OnResult is called after every successful fetch
	OnResult func(*fetcher.Result)
}

// Scheduler runs resume fetches one at a time
type Scheduler struct {
	fetch fetcher.FetchOptions
	f     Fetcher
	opts  Options
	log   *zap.Logger

	cron *cronv3.Cron

	mu   sync.Mutex
	ctx  context.Context
	runs int
	err  error
	done chan struct{}
	once sync.Once
}

// New validates the schedule and registers the fetch job
func New(f Fetcher, opts Options, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cl := cronLogger{log.Sugar()}
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithLogger(cl),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cl),
			cronv3.Recover(cl),
		),
	)

	s := &Scheduler{
		fetch: fetcher.FetchOptions{Resume: true},
		f:     f,
		opts:  opts,
		log:   log,
		cron:  c,
		done:  make(chan struct{}),
	}

	if _, err := c.AddFunc(opts.Spec, func() { s.runOnce(s.runContext()) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", opts.Spec, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until the listing is exhausted, a fatal
// error occurs or ctx is done. Scheduled fetches run under ctx, so
// cancelling it also stops an in-flight fetch.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if s.opts.RunImmediately {
		s.runOnce(ctx)
	}

	s.cron.Start()
	s.log.Info("schedule started", zap.String("spec", s.opts.Spec))

	select {
	case <-ctx.Done():
	case <-s.done:
	}

	<-s.cron.Stop().Done()
	s.log.Info("schedule stopped", zap.Int("runs", s.Runs()))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if isDone(s.done) {
		return nil
	}
	return ctx.Err()
}

// Runs returns the number of fetches started so far
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// runContext returns the ctx passed to Run
func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if isDone(s.done) {
		return
	}

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	res, err := s.f.Fetch(ctx, s.fetch)
	if err != nil {
		if errors.Is(err, fetcher.ErrUnauthenticated) {
			s.finish(err)
			return
		}
		s.log.Warn("scheduled fetch failed, will retry on next tick", zap.Error(err))
		return
	}

	if s.opts.OnResult != nil {
		s.opts.OnResult(res)
	}
	if res.Exhausted {
		s.log.Info("listing exhausted", zap.Int("total", res.Aggregate.Total))
		s.finish(nil)
	}
}

func (s *Scheduler) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// cronLogger routes cron's own messages through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
