package aggregate

// Bucketize groups records by domain. Buckets come back in first-seen domain
// order and records keep their encounter order within a bucket. A message id
// seen twice in the same batch is kept once.
func Bucketize(records []Tagged) []DomainBucket {
	buckets := make([]DomainBucket, 0)
	index := make(map[string]int)
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		if _, dup := seen[r.Record.ID]; dup {
			continue
		}
		seen[r.Record.ID] = struct{}{}

		i, ok := index[r.Domain]
		if !ok {
			i = len(buckets)
			index[r.Domain] = i
			buckets = append(buckets, DomainBucket{
				Domain: r.Domain,
				Emails: []MessageRecord{},
			})
		}
		buckets[i].Emails = append(buckets[i].Emails, r.Record)
		buckets[i].Count++
	}

	return buckets
}
