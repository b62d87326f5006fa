package fetcher

import (
	"context"
	"time"
)

// Pause kinds, as reported to the Recorder
const (
	PausePage      = "page"
	PauseBatch     = "batch"
	PauseRateLimit = "rate_limit"
)

// Pacer waits between remote calls
type Pacer interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerPacer sleeps on a real timer
type TimerPacer struct{}

func (TimerPacer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder receives fetch measurements. Implementations must be cheap.
type Recorder interface {
	ObservePage(ids int)
	ObserveMessage(outcome string)
	ObservePause(kind string, d time.Duration)
	ObserveRun(status string, elapsed time.Duration, total, domains int)
}

type nopRecorder struct{}

func (nopRecorder) ObservePage(int)                            {}
func (nopRecorder) ObserveMessage(string)                      {}
func (nopRecorder) ObservePause(string, time.Duration)         {}
func (nopRecorder) ObserveRun(string, time.Duration, int, int) {}
