package viewer

import (
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/appmonitor/internal/record"
)

// searchSource exposes the searchable text of each record to fuzzy.
type searchSource []record.LogRecord

func (s searchSource) String(i int) string {
	r := s[i]
	return r.Method + " " + strconv.Itoa(r.StatusCode) + " " + r.URL
}

func (s searchSource) Len() int { return len(s) }

// visibleRecords returns the records to list: hidden hosts removed, query
// applied, newest first. Records with equal timestamps keep the most
// recently received first.
func visibleRecords(all []record.LogRecord, query string, hidden map[string]bool) []record.LogRecord {
	out := make([]record.LogRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if hidden[all[i].Host()] {
			continue
		}
		out = append(out, all[i])
	}
	slices.SortStableFunc(out, func(a, b record.LogRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	query = strings.TrimSpace(query)
	if query == "" {
		return out
	}

	matched := make(map[int]bool)
	for _, m := range fuzzy.FindFrom(query, searchSource(out)) {
		matched[m.Index] = true
	}
	filtered := out[:0]
	for i, r := range out {
		if matched[i] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
