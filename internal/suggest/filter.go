/*
Package suggest turns typed input into a short list of matching past
searches.

Compute is the pure filter. Debouncer delays it until typing settles, and
Session ties both to a history.Store for the interactive screen.
*/
package suggest

import (
	"sort"
	"strings"

	"github.com/khanglvm/gh-repo-search/internal/history"
)

// DefaultLimit is the number of suggestions returned when no positive
// limit is given.
const DefaultLimit = 10

// Compute returns the records matching input, or nothing when the input is
// blank or the field is not focused.
//
// A record matches when its query contains the normalized input. An exact
// match comes first, then records whose query starts with the input, then
// the rest; within each group the most recently used come first.
func Compute(input string, focused bool, records []history.Record, limit int) []history.Record {
	if !focused {
		return nil
	}
	needle := history.Normalize(input)
	if needle == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []history.Record
	for _, r := range records {
		if strings.Contains(history.Normalize(r.Query), needle) {
			matches = append(matches, r)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := matchRank(matches[i].Query, needle), matchRank(matches[j].Query, needle)
		if ri != rj {
			return ri < rj
		}
		if !matches[i].LastUsedAt.Equal(matches[j].LastUsedAt) {
			return matches[i].LastUsedAt.After(matches[j].LastUsedAt)
		}
		return matches[i].Query < matches[j].Query
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

const (
	rankExact = iota
	rankPrefix
	rankContains
)

func matchRank(query, needle string) int {
	q := history.Normalize(query)
	switch {
	case q == needle:
		return rankExact
	case strings.HasPrefix(q, needle):
		return rankPrefix
	default:
		return rankContains
	}
}
