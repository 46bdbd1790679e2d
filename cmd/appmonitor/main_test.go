package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/appmonitor/internal/config"
	"github.com/sadopc/appmonitor/internal/record"
)

func TestFormatLine(t *testing.T) {
	body := strings.Repeat("x", 2000)
	ts := time.Date(2025, 12, 17, 9, 30, 1, 250_000_000, time.Local)
	tests := []struct {
		name string
		rec  record.LogRecord
		want []string
	}{
		{
			name: "pending",
			rec:  record.LogRecord{ID: "a", Timestamp: ts, Method: "GET", URL: "https://x.test/a"},
			want: []string{"09:30:01.250", "GET", "PENDING", "https://x.test/a"},
		},
		{
			name: "done",
			rec:  record.LogRecord{ID: "a", Timestamp: ts, Method: "POST", URL: "https://x.test/a", StatusCode: 201, Duration: 0.042, ResponseBody: &body},
			want: []string{"POST", "201", "42ms", "(2.0 kB)"},
		},
		{
			name: "slow",
			rec:  record.LogRecord{ID: "a", Timestamp: ts, Method: "GET", URL: "https://x.test/a", StatusCode: 504, Duration: 12.5},
			want: []string{"504", "12.50s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatLine(tt.rec)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatLine() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestServerFlagsOverrideConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var sf serverFlags
	sf.register(fs)
	if err := fs.Parse([]string{"--tcp-port", "7000", "--ws-port", "0", "--bind", "127.0.0.1", "--no-advertise", "--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := sf.load()
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.TCPPort != 7000 || cfg.WebSocketPort != 0 || cfg.BindAddress != "127.0.0.1" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Advertise || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestServerFlagsKeepDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var sf serverFlags
	sf.register(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := sf.load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != config.DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestServerFlagsRejectInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var sf serverFlags
	sf.register(fs)
	if err := fs.Parse([]string{"--no-tcp", "--no-ws"}); err != nil {
		t.Fatal(err)
	}
	if _, err := sf.load(); err == nil {
		t.Fatal("expected validation error with both transports disabled")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"
	logger := newLogger(cfg, io.Discard)
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("warn should be enabled")
	}
	if _, ok := logger.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("handler = %T, want JSON", logger.Handler())
	}

	cfg.LogFormat = "text"
	if _, ok := newLogger(cfg, io.Discard).Handler().(*slog.TextHandler); !ok {
		t.Fatal("want text handler")
	}
}
