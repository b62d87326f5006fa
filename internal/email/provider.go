package email

import (
	"context"
	"errors"
)

var (
	// ErrNotAuthenticated is returned when no credential token is available
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRateLimited marks an upstream failure caused by rate limiting.
	// Providers wrap their native error with it so callers can use errors.Is.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

// Provider defines the narrow remote surface the fetcher needs
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// IsAuthenticated reports whether a credential token is present
	IsAuthenticated() bool

	// ListMessages returns one page of message identifiers
	ListMessages(ctx context.Context, req ListRequest) (ListPage, error)

	// GetMetadata returns the requested headers and snippet for one message
	GetMetadata(ctx context.Context, req MetadataRequest) (Metadata, error)
}
