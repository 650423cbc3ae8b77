// Package merge combines an existing partition with newly fetched records
// into one deduplicated, deterministically ordered collection.
package merge

import (
	"sort"

	"github.com/xtxerr/siphon/internal/record"
)

// Combine unions two record collections by record identity.
//
// Existing records are inserted first, then incoming; an incoming record
// with a colliding identity replaces the existing copy in place, so the
// survivor's non-identity fields are the incoming ones. Output is sorted
// ascending by timestamp; the sort is stable, ties keep insertion order.
//
// Combine is idempotent and associative across repeated incremental runs:
// re-merging the same incoming set changes nothing.
func Combine(existing, incoming []record.LogRecord) []record.LogRecord {
	out := make([]record.LogRecord, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	insert := func(r record.LogRecord) {
		if r.RecordID == "" {
			record.AssignID(&r)
		}
		if i, ok := index[r.RecordID]; ok {
			out[i] = r
			return
		}
		index[r.RecordID] = len(out)
		out = append(out, r)
	}

	for _, r := range existing {
		insert(r)
	}
	for _, r := range incoming {
		insert(r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
