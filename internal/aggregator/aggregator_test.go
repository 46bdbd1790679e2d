package aggregator

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/appmonitor/internal/record"
)

func rec(id string, status int) record.LogRecord {
	return record.LogRecord{
		ID:         id,
		Timestamp:  time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC),
		Method:     "GET",
		URL:        "https://" + id + ".example.com/",
		StatusCode: status,
	}
}

func TestPublishMergesByID(t *testing.T) {
	a := New()
	a.Publish(rec("a", 0))
	a.Publish(rec("a", 200))

	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
	got, ok := a.Get("a")
	if !ok {
		t.Fatal("record a missing")
	}
	if got.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", got.StatusCode)
	}
}

func TestPublishDistinctIDs(t *testing.T) {
	a := New()
	a.Publish(rec("a", 200))
	a.Publish(rec("b", 404))
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
}

func TestInsertionOrderSurvivesReplacement(t *testing.T) {
	a := New()
	a.Publish(rec("first", 0))
	a.Publish(rec("second", 0))
	a.Publish(rec("third", 0))
	a.Publish(rec("first", 201))

	got := a.Records()
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Records()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[0].StatusCode != 201 {
		t.Errorf("first not replaced in place: %d", got[0].StatusCode)
	}
}

func TestSubscriberSeesEveryPublish(t *testing.T) {
	a := New()
	var seen []int
	a.Subscribe(func(r record.LogRecord) { seen = append(seen, r.StatusCode) })

	a.Publish(rec("a", 0))
	a.Publish(rec("a", 200))

	if len(seen) != 2 || seen[0] != 0 || seen[1] != 200 {
		t.Fatalf("subscriber saw %v, want [0 200]", seen)
	}

	a.Subscribe(nil)
	a.Publish(rec("b", 200))
	if len(seen) != 2 {
		t.Fatal("removed subscriber was still called")
	}
}

func TestRecordsIsACopy(t *testing.T) {
	a := New()
	a.Publish(rec("a", 200))
	snap := a.Records()
	snap[0].StatusCode = 500
	if got, _ := a.Get("a"); got.StatusCode != 200 {
		t.Fatal("mutating a snapshot changed the store")
	}
}

func TestClear(t *testing.T) {
	a := New()
	a.Publish(rec("a", 200))
	a.Clear()
	if a.Len() != 0 {
		t.Fatalf("Len() = %d after Clear", a.Len())
	}
	if _, ok := a.Get("a"); ok {
		t.Fatal("Get found a cleared record")
	}
	a.Publish(rec("a", 0))
	if a.Len() != 1 {
		t.Fatal("publish after Clear failed")
	}
}

func TestHosts(t *testing.T) {
	a := New()
	a.Publish(rec("b", 200))
	a.Publish(rec("a", 200))
	a.Publish(record.LogRecord{ID: "c", URL: "https://a.example.com/other"})

	hosts := a.Hosts()
	if len(hosts) != 2 || hosts[0] != "a.example.com" || hosts[1] != "b.example.com" {
		t.Fatalf("Hosts() = %v", hosts)
	}
}

func TestConcurrentPublish(t *testing.T) {
	a := New()
	var mu sync.Mutex
	last := make(map[string]int)
	a.Subscribe(func(r record.LogRecord) {
		mu.Lock()
		last[r.ID] = r.StatusCode
		mu.Unlock()
	})

	const sessions = 8
	const perSession = 200
	var wg sync.WaitGroup
	for s := 0; s < sessions; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSession; i++ {
				id := fmt.Sprintf("s%d-%d", s, i)
				a.Publish(rec(id, 0))
				a.Publish(rec(id, 200))
			}
		}(s)
	}
	wg.Wait()

	if a.Len() != sessions*perSession {
		t.Fatalf("Len() = %d, want %d", a.Len(), sessions*perSession)
	}
	for _, r := range a.Records() {
		if r.StatusCode != 200 {
			t.Fatalf("record %s left pending", r.ID)
		}
		if last[r.ID] != 200 {
			t.Fatalf("subscriber's last view of %s is %d", r.ID, last[r.ID])
		}
	}
}
