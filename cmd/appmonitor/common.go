package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sadopc/appmonitor/internal/config"
)

// serverFlags are shared by serve and tui.
type serverFlags struct {
	configPath  string
	bind        string
	tcpPort     int
	wsPort      int
	noTCP       bool
	noWS        bool
	noAdvertise bool
	logLevel    string
}

func (f *serverFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to a config file (default ~/.config/appmonitor/config.yaml)")
	fs.StringVar(&f.bind, "bind", "", "Address to bind both listeners to")
	fs.IntVar(&f.tcpPort, "tcp-port", -1, "Framed-TCP port (0 picks a free port)")
	fs.IntVar(&f.wsPort, "ws-port", -1, "WebSocket port")
	fs.BoolVar(&f.noTCP, "no-tcp", false, "Disable the framed-TCP listener")
	fs.BoolVar(&f.noWS, "no-ws", false, "Disable the WebSocket listener")
	fs.BoolVar(&f.noAdvertise, "no-advertise", false, "Do not advertise the TCP listener via mDNS")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// load reads the config file and applies flag overrides.
func (f *serverFlags) load() (config.Config, error) {
	cfg := config.Load()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return cfg, err
		}
	}

	if f.bind != "" {
		cfg.BindAddress = f.bind
	}
	if f.tcpPort >= 0 {
		cfg.TCPPort = f.tcpPort
	}
	if f.wsPort >= 0 {
		cfg.WebSocketPort = f.wsPort
	}
	if f.noTCP {
		cfg.TCPEnabled = false
	}
	if f.noWS {
		cfg.WebSocketEnabled = false
	}
	if f.noAdvertise {
		cfg.Advertise = false
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
