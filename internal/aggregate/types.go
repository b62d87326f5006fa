package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// NoSubject replaces an empty Subject header
const NoSubject = "(No Subject)"

// MessageRecord is the metadata kept for one message. Identity is ID.
type MessageRecord struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	SenderName string `json:"sender_name"`
	Subject    string `json:"subject"`
	Date       string `json:"date"`
	Snippet    string `json:"snippet"`
}

// Tagged is a record with its derived sender domain attached
type Tagged struct {
	Domain string
	Record MessageRecord
}

// DomainBucket groups the messages of one sender domain.
// Count always equals len(Emails) and Emails holds no duplicate IDs.
type DomainBucket struct {
	Domain string          `json:"domain"`
	Count  int             `json:"count"`
	Emails []MessageRecord `json:"emails"`
}

// Aggregate is the persisted result of one or more fetches
type Aggregate struct {
	Total         int            `json:"total"`
	Domains       []DomainBucket `json:"domains"`
	NextPageToken *string        `json:"next_page_token"`
	HasMore       bool           `json:"has_more"`
	CachedAt      Timestamp      `json:"cached_at"`
}

// New returns an empty aggregate
func New() *Aggregate {
	return &Aggregate{Domains: []DomainBucket{}}
}

// Cursor returns the resumption cursor, or "" when the listing is exhausted
func (a *Aggregate) Cursor() string {
	if a.NextPageToken == nil {
		return ""
	}
	return *a.NextPageToken
}

// SetCursor records the listing position. An empty token means exhausted.
func (a *Aggregate) SetCursor(token string) {
	if token == "" {
		a.NextPageToken = nil
		a.HasMore = false
		return
	}
	a.NextPageToken = &token
	a.HasMore = true
}

// IDs returns the set of message ids held by the aggregate
func (a *Aggregate) IDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range a.Domains {
		for _, e := range b.Emails {
			ids[e.ID] = struct{}{}
		}
	}
	return ids
}

// Retained returns the number of messages held across all buckets
func (a *Aggregate) Retained() int {
	n := 0
	for _, b := range a.Domains {
		n += len(b.Emails)
	}
	return n
}

// Check verifies the aggregate invariants
func (a *Aggregate) Check() error {
	for i, b := range a.Domains {
		if b.Count != len(b.Emails) {
			return fmt.Errorf("domain %s: count %d != %d emails", b.Domain, b.Count, len(b.Emails))
		}
		seen := make(map[string]struct{}, len(b.Emails))
		for _, e := range b.Emails {
			if _, dup := seen[e.ID]; dup {
				return fmt.Errorf("domain %s: duplicate message %s", b.Domain, e.ID)
			}
			seen[e.ID] = struct{}{}
		}
		if i > 0 && a.Domains[i-1].Count < b.Count {
			return fmt.Errorf("domain %s: not sorted by count", b.Domain)
		}
	}
	if (a.NextPageToken != nil) != a.HasMore {
		return fmt.Errorf("has_more=%v disagrees with next_page_token", a.HasMore)
	}
	return nil
}

// SortByCount orders buckets by count, largest first. Equal counts keep
// their relative order.
func SortByCount(buckets []DomainBucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
}

// naiveISO is the zone-less timestamp layout older snapshots were written with
const naiveISO = "2006-01-02T15:04:05.999999999"

// Timestamp is a JSON time that also reads zone-less ISO-8601 values
type Timestamp struct {
	time.Time
}

// MarshalJSON writes RFC 3339 with nanoseconds, or null when unset
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 or a zone-less ISO-8601 value in local time
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveISO, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse cached_at %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
