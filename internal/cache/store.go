// Package cache persists the aggregate snapshot between fetch invocations.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

// Store keeps at most one aggregate snapshot. It has a single writer.
type Store interface {
	// Load returns the stored snapshot, or nil when none exists
	Load(ctx context.Context) (*aggregate.Aggregate, error)
	// Save stamps CachedAt and replaces the stored snapshot atomically
	Save(ctx context.Context, agg *aggregate.Aggregate) error
	// Clear removes the snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	Close() error
}

// StorageError reports a failed cache operation
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s (%s): %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(backend, op string, err error, msg string) error {
	return &StorageError{Op: op, Backend: backend, Err: errors.Wrap(err, msg)}
}

// Clock returns the current time. Stores stamp snapshots with it.
type Clock func() time.Time

func encode(agg *aggregate.Aggregate) ([]byte, error) {
	if agg.Domains == nil {
		agg.Domains = []aggregate.DomainBucket{}
	}
	return json.MarshalIndent(agg, "", "  ")
}

func decode(data []byte) (*aggregate.Aggregate, error) {
	agg := aggregate.New()
	if err := json.Unmarshal(data, agg); err != nil {
		return nil, err
	}
	if agg.Domains == nil {
		agg.Domains = []aggregate.DomainBucket{}
	}
	return agg, nil
}
