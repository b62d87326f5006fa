package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
)

// scriptedFetcher returns its results in order, repeating the last one
type scriptedFetcher struct {
	mu      sync.Mutex
	results []*fetcher.Result
	errs    []error
	calls   int
	resumed []bool
}

func (f *scriptedFetcher) Fetch(ctx context.Context, opts fetcher.FetchOptions) (*fetcher.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := min(f.calls, len(f.results)-1)
	f.calls++
	f.resumed = append(f.resumed, opts.Resume)
	return f.results[i], f.errs[i]
}

func result(exhausted bool) *fetcher.Result {
	return &fetcher.Result{Aggregate: aggregate.New(), Exhausted: exhausted}
}

func TestRunStopsWhenExhausted(t *testing.T) {
	f := &scriptedFetcher{
		results: []*fetcher.Result{result(true)},
		errs:    []error{nil},
	}
	var seen int
	s, err := New(f, Options{
		Spec:           "0 0 0 1 1 *",
		RunImmediately: true,
		OnResult:       func(*fetcher.Result) { seen++ },
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, s.Runs())
	assert.Equal(t, 1, seen)
	assert.Equal(t, []bool{true}, f.resumed)
}

func TestRunRepeatsOnSchedule(t *testing.T) {
	f := &scriptedFetcher{
		results: []*fetcher.Result{result(false), result(true)},
		errs:    []error{nil, nil},
	}
	s, err := New(f, Options{Spec: "@every 1s", RunImmediately: true}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 2, s.Runs())
}

func TestRunStopsOnUnauthenticated(t *testing.T) {
	f := &scriptedFetcher{
		results: []*fetcher.Result{nil},
		errs:    []error{fetcher.ErrUnauthenticated},
	}
	s, err := New(f, Options{Spec: "0 0 0 1 1 *", RunImmediately: true}, nil)
	require.NoError(t, err)

	err = s.Run(context.Background())
	assert.True(t, errors.Is(err, fetcher.ErrUnauthenticated))
}

func TestRunKeepsGoingAfterTransientError(t *testing.T) {
	f := &scriptedFetcher{
		results: []*fetcher.Result{nil, result(true)},
		errs:    []error{errors.New("temporary"), nil},
	}
	s, err := New(f, Options{Spec: "@every 1s", RunImmediately: true}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 2, s.Runs())
}

func TestRunCancelled(t *testing.T) {
	f := &scriptedFetcher{
		results: []*fetcher.Result{result(false)},
		errs:    []error{nil},
	}
	s, err := New(f, Options{Spec: "0 0 0 1 1 *"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Equal(t, 0, s.Runs())
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(&scriptedFetcher{}, Options{Spec: "not a schedule"}, nil)
	assert.Error(t, err)
}

// blockingFetcher waits until its ctx is done
type blockingFetcher struct {
	started chan struct{}
	once    sync.Once
}

func (f *blockingFetcher) Fetch(ctx context.Context, opts fetcher.FetchOptions) (*fetcher.Result, error) {
	f.once.Do(func() { close(f.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunCancelReachesScheduledFetch(t *testing.T) {
	f := &blockingFetcher{started: make(chan struct{})}
	s, err := New(f, Options{Spec: "@every 1s"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	select {
	case <-f.started:
	case <-time.After(10 * time.Second):
		t.Fatal("scheduled fetch never started")
	}
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
