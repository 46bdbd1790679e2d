// Package monitor wires the ingestion core together: one aggregator fed by a
// framed-TCP listener and a WebSocket listener. It is the surface the
// presentation layer talks to.
package monitor

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/sadopc/appmonitor/internal/aggregator"
	"github.com/sadopc/appmonitor/internal/config"
	"github.com/sadopc/appmonitor/internal/listener"
	"github.com/sadopc/appmonitor/internal/record"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	advertiser listener.Advertiser
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAdvertiser overrides the mDNS advertiser built from the config. Nil
// disables advertisement.
func WithAdvertiser(a listener.Advertiser) Option {
	return func(o *options) { o.advertiser = a }
}

// Service owns the record store and both transport listeners.
type Service struct {
	records   *aggregator.Aggregator
	listeners []*listener.Listener
	tcp       *listener.Listener
	ws        *listener.Listener

	mu        sync.Mutex
	running   map[*listener.Listener]bool
	observers []func(bool)
}

// New builds a Service from cfg. Listeners are created but not started.
func New(cfg config.Config, opts ...Option) *Service {
	o := options{logger: slog.Default()}
	if cfg.Advertise {
		o.advertiser = listener.Zeroconf{
			Instance: cfg.ServiceName,
			Service:  cfg.ServiceType,
			Domain:   cfg.ServiceDomain,
		}
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		records: aggregator.New(),
		running: make(map[*listener.Listener]bool),
	}

	common := []listener.Option{
		listener.WithLogger(o.logger),
		listener.WithRetryDelay(cfg.RetryDelay),
		listener.WithMaxPayload(cfg.MaxFrameSize),
	}
	if cfg.TCPEnabled {
		tcpOpts := append([]listener.Option{listener.WithAdvertiser(o.advertiser)}, common...)
		s.tcp = listener.NewTCP(cfg.TCPAddr(), s.records, tcpOpts...)
		s.add(s.tcp)
	}
	if cfg.WebSocketEnabled {
		s.ws = listener.NewWebSocket(cfg.WebSocketAddr(), s.records, common...)
		s.add(s.ws)
	}
	return s
}

func (s *Service) add(l *listener.Listener) {
	s.listeners = append(s.listeners, l)
	l.OnStateChange(func(st listener.State) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.running[l] = st.Running()
		running := s.runningLocked()
		for _, fn := range s.observers {
			fn(running)
		}
	})
}

// Start starts every enabled listener. It is idempotent.
func (s *Service) Start() {
	for _, l := range s.listeners {
		l.Start()
	}
}

// Stop stops every listener and closes all live connections. Stored records
// are kept.
func (s *Service) Stop() {
	for _, l := range s.listeners {
		l.Stop()
	}
}

// Toggle stops a running service or starts a stopped one.
func (s *Service) Toggle() {
	if s.Running() {
		s.Stop()
		return
	}
	s.Start()
}

// Running reports whether at least one listener is accepting connections.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Service) runningLocked() bool {
	for _, r := range s.running {
		if r {
			return true
		}
	}
	return false
}

// OnRunning registers fn to receive the running signal on every listener
// state transition. fn must not block or call back into the Service.
func (s *Service) OnRunning(fn func(running bool)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// OnRecord installs the single record subscriber.
func (s *Service) OnRecord(fn func(record.LogRecord)) {
	s.records.Subscribe(fn)
}

// Records exposes the merged record store.
func (s *Service) Records() *aggregator.Aggregator { return s.records }

// TCP returns the framed-TCP listener, or nil when disabled.
func (s *Service) TCP() *listener.Listener { return s.tcp }

// WebSocket returns the WebSocket listener, or nil when disabled.
func (s *Service) WebSocket() *listener.Listener { return s.ws }

// Status renders one status line per enabled transport.
func (s *Service) Status() string {
	var parts []string
	if s.tcp != nil {
		parts = append(parts, "tcp "+s.tcp.State().String())
	}
	if s.ws != nil {
		parts = append(parts, "ws "+s.ws.State().String())
	}
	return strings.Join(parts, " · ")
}
