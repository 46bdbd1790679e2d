package config

import (
	"fmt"
	"time"
)

// DefaultWebSocketPort is the documented port instrumented clients connect
// to when they use the WebSocket transport.
const DefaultWebSocketPort = 9876

// Config holds the application configuration.
type Config struct {
	BindAddress string `yaml:"bind_address"`

	TCPEnabled bool `yaml:"tcp_enabled"`
	TCPPort    int  `yaml:"tcp_port"`

	WebSocketEnabled bool `yaml:"websocket_enabled"`
	WebSocketPort    int  `yaml:"websocket_port"`

	Advertise     bool   `yaml:"advertise"`
	ServiceName   string `yaml:"service_name"`
	ServiceType   string `yaml:"service_type"`
	ServiceDomain string `yaml:"service_domain"`

	RetryDelay   time.Duration `yaml:"retry_delay"`
	MaxFrameSize int           `yaml:"max_frame_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	Theme string `yaml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BindAddress:      "",
		TCPEnabled:       true,
		TCPPort:          0,
		WebSocketEnabled: true,
		WebSocketPort:    DefaultWebSocketPort,
		Advertise:        true,
		ServiceName:      "AppNetworkMonitor",
		ServiceType:      "_appmonitor._tcp",
		ServiceDomain:    "local.",
		RetryDelay:       2 * time.Second,
		MaxFrameSize:     16 * 1024 * 1024,
		LogLevel:         "info",
		LogFormat:        "json",
		LogFile:          "",
		Theme:            "catppuccin-mocha",
	}
}

// TCPAddr returns the host:port the framed-TCP listener binds.
func (c Config) TCPAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.TCPPort)
}

// WebSocketAddr returns the host:port the WebSocket listener binds.
func (c Config) WebSocketAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.WebSocketPort)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.TCPPort < 0 || c.TCPPort > 65535 {
		return fmt.Errorf("tcp_port must be between 0 and 65535, got %d", c.TCPPort)
	}
	if c.WebSocketPort < 0 || c.WebSocketPort > 65535 {
		return fmt.Errorf("websocket_port must be between 0 and 65535, got %d", c.WebSocketPort)
	}
	if !c.TCPEnabled && !c.WebSocketEnabled {
		return fmt.Errorf("at least one of tcp_enabled and websocket_enabled must be true")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive, got %s", c.RetryDelay)
	}
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("max_frame_size must be positive, got %d", c.MaxFrameSize)
	}
	if c.Advertise && c.ServiceType == "" {
		return fmt.Errorf("service_type is required when advertise is enabled")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	return nil
}
