package fetcher

import (
	"errors"
	"strings"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
	"github.com/vijay-prabhu/inboxdomains/internal/email"
)

// SkipKind says why a message was left out of the aggregate
type SkipKind string

const (
	SkipRateLimited   SkipKind = "rate_limited"
	SkipUpstreamError SkipKind = "upstream_error"
)

// Outcome values reported to the Recorder
const (
	outcomeOK = "ok"
)

// Skip describes a message whose metadata could not be retrieved
type Skip struct {
	Kind SkipKind
	Err  error
}

// Outcome is the result of retrieving one message's metadata.
// Exactly one of Record and Skip is set.
type Outcome struct {
	ID     string
	Domain string
	Record *aggregate.MessageRecord
	Skip   *Skip
}

// isRateLimited reports whether err is the upstream asking us to slow down
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, email.ErrRateLimited) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "rateLimitExceeded") || strings.Contains(msg, "429")
}

// recordFrom builds the stored record for a message
func recordFrom(id string, md email.Metadata) (string, aggregate.MessageRecord) {
	from := email.HeaderValue(md.Headers, "From")
	subject := email.HeaderValue(md.Headers, "Subject")
	if subject == "" {
		subject = aggregate.NoSubject
	}

	return email.DomainOf(from), aggregate.MessageRecord{
		ID:         id,
		From:       from,
		SenderName: email.SenderNameOf(from),
		Subject:    subject,
		Date:       email.HeaderValue(md.Headers, "Date"),
		Snippet:    md.Snippet,
	}
}
