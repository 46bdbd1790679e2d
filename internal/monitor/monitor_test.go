package monitor

import (
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/appmonitor/internal/config"
	"github.com/sadopc/appmonitor/internal/framing"
	"github.com/sadopc/appmonitor/internal/listener"
	"github.com/sadopc/appmonitor/internal/record"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.BindAddress = "127.0.0.1"
	cfg.TCPPort = 0
	cfg.WebSocketPort = 0
	return cfg
}

func newService(t *testing.T, cfg config.Config) *Service {
	t.Helper()
	s := New(cfg,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAdvertiser(nil),
	)
	t.Cleanup(s.Stop)
	return s
}

func waitRunning(t *testing.T, ch <-chan bool, want bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for running=%v", want)
		}
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestServiceEndToEnd(t *testing.T) {
	s := newService(t, testConfig())

	var mu sync.Mutex
	var seen []record.LogRecord
	s.OnRecord(func(r record.LogRecord) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	})

	s.Start()
	eventually(t, "tcp listening", func() bool { return s.TCP().Running() })
	eventually(t, "ws listening", func() bool { return s.WebSocket().Running() })

	conn, err := net.Dial("tcp", s.TCP().State().Addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	for _, status := range []int{0, 200} {
		data, _ := record.Encode(record.LogRecord{
			ID: "tx-1", Timestamp: time.Now(), Method: "GET",
			URL: "https://example.com/", StatusCode: status,
		})
		if err := framing.WriteFrame(conn, data); err != nil {
			t.Fatal(err)
		}
	}

	eventually(t, "two notifications", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	})
	if s.Records().Len() != 1 {
		t.Fatalf("stored %d records, want 1", s.Records().Len())
	}
	if r, _ := s.Records().Get("tx-1"); r.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", r.StatusCode)
	}
}

func TestServiceRunningSignal(t *testing.T) {
	s := newService(t, testConfig())
	ch := make(chan bool, 64)
	s.OnRunning(func(running bool) {
		select {
		case ch <- running:
		default:
		}
	})

	if s.Running() {
		t.Fatal("running before Start")
	}
	s.Start()
	waitRunning(t, ch, true)
	if !s.Running() {
		t.Fatal("Running() = false after start")
	}

	s.Toggle()
	waitRunning(t, ch, false)
	if s.Running() {
		t.Fatal("Running() = true after Toggle")
	}

	s.Toggle()
	waitRunning(t, ch, true)
}

func TestServiceDisabledTransport(t *testing.T) {
	cfg := testConfig()
	cfg.WebSocketEnabled = false
	s := newService(t, cfg)
	if s.WebSocket() != nil {
		t.Fatal("websocket listener created while disabled")
	}
	s.Start()
	eventually(t, "tcp listening", func() bool { return s.Running() })
	if got := s.Status(); got == "" || got[:3] != "tcp" {
		t.Fatalf("Status() = %q", got)
	}
}

func TestServiceKeepsRecordsAcrossStop(t *testing.T) {
	s := newService(t, testConfig())
	s.Records().Publish(record.LogRecord{ID: "kept", StatusCode: 200})
	s.Start()
	s.Stop()
	if s.Records().Len() != 1 {
		t.Fatal("Stop dropped stored records")
	}
	if s.TCP().State().Status != listener.StatusStopped {
		t.Fatalf("tcp state = %v", s.TCP().State())
	}
}
