package viewer

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/appmonitor/internal/record"
)

// Service is the part of the monitor the viewer drives.
type Service interface {
	Toggle()
	Running() bool
	Status() string
}

// Store is the merged record store.
type Store interface {
	Records() []record.LogRecord
	Hosts() []string
	Clear()
}

// SnapshotMsg carries the current store contents and service state.
type SnapshotMsg struct {
	Records []record.LogRecord
	Hosts   []string
	Running bool
	Status  string
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Feed turns record publications and running-state changes into
// SnapshotMsgs. Notify never blocks, so it is safe to call from the
// aggregator's subscriber and listener observers; bursts of notifications
// collapse into one snapshot.
type Feed struct {
	dirty chan struct{}
	svc   Service
	store Store
}

// NewFeed creates a feed reading from svc and store.
func NewFeed(svc Service, store Store) *Feed {
	return &Feed{
		dirty: make(chan struct{}, 1),
		svc:   svc,
		store: store,
	}
}

// Notify marks the view stale.
func (f *Feed) Notify() {
	select {
	case f.dirty <- struct{}{}:
	default:
	}
}

// OnRecord adapts Notify to the record subscriber signature.
func (f *Feed) OnRecord(record.LogRecord) { f.Notify() }

// OnRunning adapts Notify to the running observer signature.
func (f *Feed) OnRunning(bool) { f.Notify() }

// Snapshot reads the current state.
func (f *Feed) Snapshot() SnapshotMsg {
	return SnapshotMsg{
		Records: f.store.Records(),
		Hosts:   f.store.Hosts(),
		Running: f.svc.Running(),
		Status:  f.svc.Status(),
	}
}

// Run delivers a snapshot to p after every notification until ctx is done.
func (f *Feed) Run(ctx context.Context, p Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.dirty:
			p.Send(f.Snapshot())
		}
	}
}
