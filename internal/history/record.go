/*
Package history implements the recent-search store.

The store keeps one record per normalized query with the time it was last
used. It is hydrated once from a key-value slot, mirrored back to that slot
on every mutation, and read through sorted, copied snapshots. A single Store
is constructed at startup and shared by every consumer.
*/
package history

import (
	"sort"
	"strings"
	"time"
)

// Record is a past search and when it was last used.
type Record struct {
	Query      string    `json:"query"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Normalize lower-cases and trims a query. The result is the store's key.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// SortByRecency orders records most recent first. Equal timestamps fall
// back to query order so output is stable.
func SortByRecency(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return newer(records[i], records[j])
	})
}

func newer(a, b Record) bool {
	if !a.LastUsedAt.Equal(b.LastUsedAt) {
		return a.LastUsedAt.After(b.LastUsedAt)
	}
	return a.Query < b.Query
}

func recordsFrom(entries map[string]time.Time) []Record {
	records := make([]Record, 0, len(entries))
	for q, t := range entries {
		records = append(records, Record{Query: q, LastUsedAt: t})
	}
	SortByRecency(records)
	return records
}
