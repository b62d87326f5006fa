package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

func sampleAggregate() *aggregate.Aggregate {
	agg := aggregate.New()
	agg.Total = 3
	agg.Domains = []aggregate.DomainBucket{
		{Domain: "github.com", Count: 2, Emails: []aggregate.MessageRecord{
			{ID: "1", SenderName: "GitHub", Subject: "[repo] New issue"},
			{ID: "2", SenderName: "GitHub", Subject: "[repo] PR merged"},
		}},
		{Domain: "example.com", Count: 1, Emails: []aggregate.MessageRecord{
			{ID: "3", SenderName: "Jane", Subject: aggregate.NoSubject},
		}},
	}
	agg.SetCursor("next")
	return agg
}

func TestTableTo(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want []string
	}{
		{
			name: "aggregate",
			data: sampleAggregate(),
			want: []string{"github.com", "example.com", "[repo] New issue", "Total messages: 3", "fetch --resume"},
		},
		{
			name: "status without cache",
			data: &Status{Authenticated: false},
			want: []string{"auth login", "empty"},
		},
		{
			name: "fetch summary",
			data: &FetchSummary{Aggregate: sampleAggregate(), FetchedThisBatch: 3, Skipped: 1},
			want: []string{"Messages listed:  3", "Skipped:          1", "github.com"},
		},
		{
			name: "exhausted fetch",
			data: &FetchSummary{Aggregate: sampleAggregate(), Exhausted: true},
			want: []string{"Nothing new to fetch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TableTo(&buf, tt.data); err != nil {
				t.Fatalf("TableTo() error: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTableToUnsupported(t *testing.T) {
	if err := TableTo(&bytes.Buffer{}, 42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestDomainsTableLimit(t *testing.T) {
	agg := sampleAggregate()

	var buf bytes.Buffer
	if err := DomainsTable(&buf, agg.Domains, 1); err != nil {
		t.Fatalf("DomainsTable() error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "example.com") {
		t.Errorf("limited table should hide example.com:\n%s", out)
	}
	if !strings.Contains(out, "and 1 more domains") {
		t.Errorf("missing hidden-row note:\n%s", out)
	}
}

func TestFetchSummaryJSON(t *testing.T) {
	s := &FetchSummary{Aggregate: sampleAggregate(), FetchedThisBatch: 3, RunID: "r1"}

	var buf bytes.Buffer
	if err := JSONTo(&buf, s); err != nil {
		t.Fatalf("JSONTo() error: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"total", "domains", "next_page_token", "has_more", "cached_at", "fetched_this_batch"} {
		if _, ok := got[key]; !ok {
			t.Errorf("JSON missing key %q", key)
		}
	}
	if got["fetched_this_batch"] != float64(3) {
		t.Errorf("fetched_this_batch = %v, want 3", got["fetched_this_batch"])
	}
}

func TestStatusJSON(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Status{Authenticated: true, HasCache: true, CachedAt: &at, CachedTotal: 9}

	var buf bytes.Buffer
	if err := JSONTo(&buf, s); err != nil {
		t.Fatalf("JSONTo() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"cached_total": 9`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is far too long", 10, "this is..."},
		{"ünïcödé-strïng", 8, "ünïcö..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{50 * time.Hour, "2 days ago"},
	}

	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
