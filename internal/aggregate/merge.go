package aggregate

// Merge folds incoming buckets into existing ones and returns a new slice
// sorted by count. Neither input is modified.
//
// Existing buckets keep their position ahead of new domains before sorting.
// For a domain present on both sides only messages with unseen ids are
// appended. The id set of a domain is built at most once per call.
func Merge(existing []DomainBucket, incoming []DomainBucket) []DomainBucket {
	out := make([]DomainBucket, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	for _, b := range existing {
		index[b.Domain] = len(out)
		out = append(out, cloneBucket(b))
	}

	idSets := make(map[string]map[string]struct{})

	for _, b := range incoming {
		i, ok := index[b.Domain]
		if !ok {
			index[b.Domain] = len(out)
			out = append(out, cloneBucket(b))
			continue
		}

		ids, ok := idSets[b.Domain]
		if !ok {
			ids = make(map[string]struct{}, len(out[i].Emails)+len(b.Emails))
			for _, e := range out[i].Emails {
				ids[e.ID] = struct{}{}
			}
			idSets[b.Domain] = ids
		}

		for _, e := range b.Emails {
			if _, dup := ids[e.ID]; dup {
				continue
			}
			ids[e.ID] = struct{}{}
			out[i].Emails = append(out[i].Emails, e)
			out[i].Count++
		}
	}

	SortByCount(out)
	return out
}

func cloneBucket(b DomainBucket) DomainBucket {
	emails := make([]MessageRecord, len(b.Emails))
	copy(emails, b.Emails)
	return DomainBucket{
		Domain: b.Domain,
		Count:  b.Count,
		Emails: emails,
	}
}
