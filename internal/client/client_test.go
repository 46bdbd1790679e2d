package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/appmonitor/internal/listener"
	"github.com/sadopc/appmonitor/internal/record"
)

type collector struct {
	mu      sync.Mutex
	records []record.LogRecord
}

func (c *collector) Publish(r record.LogRecord) {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()
}

func (c *collector) wait(t *testing.T, n int) []record.LogRecord {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := append([]record.LogRecord(nil), c.records...)
		c.mu.Unlock()
		if len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d records", n)
	return nil
}

func startListener(t *testing.T, l *listener.Listener) net.Addr {
	t.Helper()
	l.Start()
	t.Cleanup(l.Stop)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if st := l.State(); st.Running() {
			return st.Addr
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("listener did not start")
	return nil
}

func quiet() listener.Option {
	return listener.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTransactionRecords(t *testing.T) {
	tx := NewTransaction("POST", "https://api.example.com/items")
	tx.Body = `{"n":1}`
	if _, err := uuid.Parse(tx.ID); err != nil {
		t.Fatalf("ID %q is not a UUID: %v", tx.ID, err)
	}

	pending := tx.Pending()
	if !pending.IsPending() || pending.RequestBodyText() != `{"n":1}` {
		t.Fatalf("pending = %+v", pending)
	}

	done := tx.Complete(201, 1500*time.Millisecond, map[string]string{"Location": "/items/1"}, "")
	if done.ID != pending.ID || done.StatusCode != 201 || done.Duration != 1.5 {
		t.Fatalf("done = %+v", done)
	}
	if done.ResponseBody != nil {
		t.Fatal("empty body should be absent")
	}
}

func TestTCPClientSendsToListener(t *testing.T) {
	pub := &collector{}
	addr := startListener(t, listener.NewTCP("127.0.0.1:0", pub, quiet()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := DialTCP(ctx, addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	tx := NewTransaction("GET", "https://example.com/a")
	if err := c.Send(ctx, tx.Pending()); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(ctx, tx.Complete(200, time.Millisecond, nil, "ok")); err != nil {
		t.Fatal(err)
	}

	got := pub.wait(t, 2)
	if got[0].ID != tx.ID || got[1].StatusCode != 200 {
		t.Fatalf("got %+v", got)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(ctx, tx.Pending()); err == nil {
		t.Fatal("expected error after Close")
	}
}

func TestWSClientSendsToListener(t *testing.T) {
	pub := &collector{}
	addr := startListener(t, listener.NewWebSocket("127.0.0.1:0", pub, quiet()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := DialWebSocket(ctx, "ws://"+addr.String()+"/")
	if err != nil {
		t.Fatal(err)
	}

	tx := NewTransaction("DELETE", "https://example.com/b")
	if err := c.Send(ctx, tx.Complete(404, time.Millisecond, nil, "")); err != nil {
		t.Fatal(err)
	}
	got := pub.wait(t, 1)
	if got[0].StatusCode != 404 {
		t.Fatalf("got %+v", got)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestSendRejectsRecordWithoutID(t *testing.T) {
	c := &TCPClient{}
	if err := c.Send(context.Background(), record.LogRecord{}); err == nil {
		t.Fatal("expected encode error")
	}
}
