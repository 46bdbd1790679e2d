package listener

import (
	"fmt"
	"net"
)

// Status is a listener's lifecycle phase.
type Status int

const (
	StatusStopped Status = iota
	StatusStarting
	StatusListening
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusListening:
		return "listening"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a listener. Addr is set while listening; Err is set
// while failed.
type State struct {
	Status Status
	Addr   net.Addr
	Err    error
}

// Running reports whether the listener is accepting connections.
func (s State) Running() bool { return s.Status == StatusListening }

// Port returns the bound TCP port, or 0 when not listening.
func (s State) Port() int {
	if tcp, ok := s.Addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// String renders the status line shown to users.
func (s State) String() string {
	switch s.Status {
	case StatusStopped:
		return "Stopped"
	case StatusStarting:
		return "Starting..."
	case StatusListening:
		return fmt.Sprintf("Listening on :%d", s.Port())
	case StatusFailed:
		if s.Err == nil {
			return "Error: unknown"
		}
		return "Error: " + s.Err.Error()
	default:
		return "Unknown"
	}
}
