// Package aggregator merges decoded records from every connection into one
// ordered store and republishes each result to a single subscriber.
package aggregator

import (
	"sort"
	"sync"

	"github.com/sadopc/appmonitor/internal/record"
)

// Subscriber receives every published record after it has been merged. It is
// called with the aggregator's lock held, so it must return promptly and must
// not call back into the Aggregator.
type Subscriber func(record.LogRecord)

// Aggregator is an ordered map of records keyed by ID. Iteration follows
// first-seen order; a later record with an existing ID replaces the stored
// value in place. All methods are safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	index   map[string]int
	records []record.LogRecord
	sub     Subscriber
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Subscribe installs the single subscriber, replacing any previous one.
// Passing nil removes it.
func (a *Aggregator) Subscribe(fn Subscriber) {
	a.mu.Lock()
	a.sub = fn
	a.mu.Unlock()
}

// Publish merges r by ID and notifies the subscriber with the stored value.
// Merge and notification happen under one lock, so two publishes of the same
// ID are observed by the subscriber in the order they were merged.
func (a *Aggregator) Publish(r record.LogRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i, ok := a.index[r.ID]; ok {
		a.records[i] = r
	} else {
		a.index[r.ID] = len(a.records)
		a.records = append(a.records, r)
	}
	if a.sub != nil {
		a.sub(r)
	}
}

// Records returns a copy of the stored records in first-seen order.
func (a *Aggregator) Records() []record.LogRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]record.LogRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Get returns the stored record for id.
func (a *Aggregator) Get(id string) (record.LogRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index[id]
	if !ok {
		return record.LogRecord{}, false
	}
	return a.records[i], true
}

// Len returns the number of distinct IDs stored.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Clear drops every stored record.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.index = make(map[string]int)
	a.records = nil
}

// Hosts returns the distinct URL hosts of the stored records, sorted.
func (a *Aggregator) Hosts() []string {
	a.mu.Lock()
	seen := make(map[string]struct{}, len(a.records))
	for _, r := range a.records {
		seen[r.Host()] = struct{}{}
	}
	a.mu.Unlock()

	hosts := make([]string, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}
