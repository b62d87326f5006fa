package aggregate

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string) MessageRecord {
	return MessageRecord{ID: id, From: id + "@x", SenderName: id, Subject: "s-" + id}
}

func tagged(domain string, ids ...string) []Tagged {
	out := make([]Tagged, len(ids))
	for i, id := range ids {
		out[i] = Tagged{Domain: domain, Record: rec(id)}
	}
	return out
}

func emailIDs(b DomainBucket) []string {
	ids := make([]string, len(b.Emails))
	for i, e := range b.Emails {
		ids[i] = e.ID
	}
	return ids
}

func TestBucketize_EncounterOrder(t *testing.T) {
	var records []Tagged
	records = append(records, tagged("b.com", "1")...)
	records = append(records, tagged("a.com", "2")...)
	records = append(records, tagged("b.com", "3", "4")...)
	records = append(records, tagged("a.com", "5")...)

	buckets := Bucketize(records)

	require.Len(t, buckets, 2)
	assert.Equal(t, "b.com", buckets[0].Domain)
	assert.Equal(t, []string{"1", "3", "4"}, emailIDs(buckets[0]))
	assert.Equal(t, 3, buckets[0].Count)
	assert.Equal(t, "a.com", buckets[1].Domain)
	assert.Equal(t, []string{"2", "5"}, emailIDs(buckets[1]))
	assert.Equal(t, 2, buckets[1].Count)
}

func TestBucketize_DuplicateIDInBatch(t *testing.T) {
	records := append(tagged("a.com", "1", "2"), tagged("a.com", "1")...)

	buckets := Bucketize(records)

	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"1", "2"}, emailIDs(buckets[0]))
	assert.Equal(t, 2, buckets[0].Count)
}

func TestBucketize_Empty(t *testing.T) {
	buckets := Bucketize(nil)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestMerge_DedupAndSort(t *testing.T) {
	existing := []DomainBucket{
		{Domain: "a.com", Count: 2, Emails: []MessageRecord{rec("1"), rec("2")}},
		{Domain: "b.com", Count: 1, Emails: []MessageRecord{rec("3")}},
	}
	incoming := Bucketize(append(
		tagged("b.com", "3", "4", "5"),
		tagged("c.com", "6")...,
	))

	merged := Merge(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, "b.com", merged[0].Domain)
	assert.Equal(t, []string{"3", "4", "5"}, emailIDs(merged[0]))
	assert.Equal(t, "a.com", merged[1].Domain)
	assert.Equal(t, "c.com", merged[2].Domain)

	// inputs untouched
	assert.Equal(t, 1, existing[1].Count)
	assert.Len(t, existing[1].Emails, 1)
}

func TestMerge_Idempotent(t *testing.T) {
	batch := Bucketize(append(tagged("a.com", "1", "2"), tagged("b.com", "3")...))

	once := Merge(nil, batch)
	twice := Merge(once, batch)

	assert.Equal(t, once, twice)

	agg := &Aggregate{Domains: twice}
	require.NoError(t, agg.Check())
}

func TestMerge_StableTies(t *testing.T) {
	existing := []DomainBucket{
		{Domain: "x.com", Count: 1, Emails: []MessageRecord{rec("1")}},
		{Domain: "y.com", Count: 1, Emails: []MessageRecord{rec("2")}},
	}
	incoming := Bucketize(tagged("z.com", "3"))

	merged := Merge(existing, incoming)

	got := []string{merged[0].Domain, merged[1].Domain, merged[2].Domain}
	assert.Equal(t, []string{"x.com", "y.com", "z.com"}, got)
}

func TestMerge_InvariantsHoldAcrossRounds(t *testing.T) {
	var domains []DomainBucket
	for round := 0; round < 5; round++ {
		var records []Tagged
		for i := 0; i < 30; i++ {
			// overlapping id ranges so later rounds repeat earlier ids
			id := fmt.Sprintf("m%d", round*10+i)
			domain := fmt.Sprintf("d%d.com", (round*10+i)%4)
			records = append(records, Tagged{Domain: domain, Record: rec(id)})
		}
		domains = Merge(domains, Bucketize(records))

		agg := &Aggregate{Domains: domains}
		require.NoError(t, agg.Check(), "round %d", round)
	}

	agg := &Aggregate{Domains: domains}
	assert.Equal(t, 70, agg.Retained())
	assert.Len(t, agg.IDs(), 70)
}

func TestAggregate_SetCursor(t *testing.T) {
	agg := New()

	agg.SetCursor("tok")
	assert.True(t, agg.HasMore)
	assert.Equal(t, "tok", agg.Cursor())

	agg.SetCursor("")
	assert.False(t, agg.HasMore)
	assert.Nil(t, agg.NextPageToken)
	assert.Equal(t, "", agg.Cursor())
}

func TestAggregate_CheckDetectsViolations(t *testing.T) {
	tests := []struct {
		name string
		agg  Aggregate
	}{
		{
			name: "count mismatch",
			agg:  Aggregate{Domains: []DomainBucket{{Domain: "a", Count: 2, Emails: []MessageRecord{rec("1")}}}},
		},
		{
			name: "duplicate id",
			agg:  Aggregate{Domains: []DomainBucket{{Domain: "a", Count: 2, Emails: []MessageRecord{rec("1"), rec("1")}}}},
		},
		{
			name: "unsorted",
			agg: Aggregate{Domains: []DomainBucket{
				{Domain: "a", Count: 1, Emails: []MessageRecord{rec("1")}},
				{Domain: "b", Count: 2, Emails: []MessageRecord{rec("2"), rec("3")}},
			}},
		},
		{
			name: "has_more without cursor",
			agg:  Aggregate{HasMore: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.agg.Check())
		})
	}
}

func TestAggregate_JSONRoundTrip(t *testing.T) {
	agg := New()
	agg.Total = 3
	agg.Domains = Merge(nil, Bucketize(append(tagged("a.com", "1", "2"), tagged("b.com", "3")...)))
	agg.SetCursor("next")
	agg.CachedAt = Timestamp{time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)}

	data, err := json.Marshal(agg)
	require.NoError(t, err)

	var decoded Aggregate
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, agg.Total, decoded.Total)
	assert.Equal(t, agg.Domains, decoded.Domains)
	assert.Equal(t, "next", decoded.Cursor())
	assert.True(t, decoded.HasMore)
	assert.True(t, agg.CachedAt.Equal(decoded.CachedAt.Time))

	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestAggregate_ExhaustedCursorIsNull(t *testing.T) {
	agg := New()
	agg.SetCursor("")

	data, err := json.Marshal(agg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "next_page_token")
	assert.Nil(t, raw["next_page_token"])
	assert.Equal(t, []any{}, raw["domains"])
}

func TestTimestamp_ReadsNaiveISO(t *testing.T) {
	var agg Aggregate
	input := `{"total":1,"domains":[],"next_page_token":null,"has_more":false,"cached_at":"2025-11-02T10:20:30.123456","fetched_this_batch":1}`

	require.NoError(t, json.Unmarshal([]byte(input), &agg))

	want := time.Date(2025, 11, 2, 10, 20, 30, 123456000, time.Local)
	assert.True(t, want.Equal(agg.CachedAt.Time), "got %v", agg.CachedAt)
}
