// Package listener accepts instrumented-client connections over framed TCP
// or WebSocket, runs one receive loop per connection and hands decoded
// records to a Publisher. A Listener heals itself: a bind or accept failure
// moves it to StatusFailed and it retries after a fixed delay until it binds
// again or is stopped.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sadopc/appmonitor/internal/framing"
)

// DefaultRetryDelay is the pause between a failure and the next bind attempt.
const DefaultRetryDelay = 2 * time.Second

// transport is the wire-specific bring-up of a Listener.
type transport interface {
	listen() (net.Listener, error)
	// serve accepts connections on ln until it fails or ln is closed,
	// calling spawn for each one.
	serve(ctx context.Context, ln net.Listener, spawn spawnFunc) error
}

// spawnFunc registers a session for recv. It returns nil when the listener
// has been stopped in the meantime; the caller must then drop the
// connection.
type spawnFunc func(recv receiver, remote string) *Session

// Option configures a Listener.
type Option func(*Listener)

// WithRetryDelay sets the delay between a failure and the next start.
func WithRetryDelay(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.retryDelay = d
		}
	}
}

// WithLogger sets the logger. The listener adds a transport attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxPayload sets the largest accepted message. Larger messages close
// the connection that sent them.
func WithMaxPayload(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.maxPayload = n
		}
	}
}

// WithAdvertiser sets how a framed-TCP listener announces itself. Nil turns
// advertisement off. WebSocket listeners ignore it.
func WithAdvertiser(a Advertiser) Option {
	return func(l *Listener) {
		l.advertiser = a
	}
}

// Listener binds one transport endpoint and supervises its sessions.
type Listener struct {
	transport  transport
	publisher  Publisher
	logger     *slog.Logger
	retryDelay time.Duration
	maxPayload int
	advertiser Advertiser

	mu        sync.Mutex
	state     State
	gen       uint64 // bumped by Stop; stale runs and retries compare it
	ln        net.Listener
	cancel    context.CancelFunc
	retry     *time.Timer
	sessions  map[*Session]struct{}
	observers []func(State)
}

// NewTCP creates a framed-TCP listener for addr (":0" picks an ephemeral
// port). Unless WithAdvertiser says otherwise it advertises nothing.
func NewTCP(addr string, publisher Publisher, opts ...Option) *Listener {
	l := newListener(publisher, opts)
	l.logger = l.logger.With("transport", "tcp")
	l.transport = &tcpTransport{
		addr:       addr,
		advertiser: l.advertiser,
		maxPayload: l.maxPayload,
		logger:     l.logger,
	}
	return l
}

// NewWebSocket creates a WebSocket listener for addr.
func NewWebSocket(addr string, publisher Publisher, opts ...Option) *Listener {
	l := newListener(publisher, opts)
	l.logger = l.logger.With("transport", "websocket")
	l.transport = &wsTransport{
		addr:       addr,
		maxPayload: l.maxPayload,
		logger:     l.logger,
	}
	return l
}

func newListener(publisher Publisher, opts []Option) *Listener {
	l := &Listener{
		publisher:  publisher,
		logger:     slog.Default(),
		retryDelay: DefaultRetryDelay,
		maxPayload: framing.DefaultMaxPayload,
		sessions:   make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnStateChange registers fn to be called on every state transition. fn runs
// with the listener's lock held: it must not block or call back into the
// Listener.
func (l *Listener) OnStateChange(fn func(State)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// State returns the current state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Running reports whether the listener is accepting connections.
func (l *Listener) Running() bool {
	return l.State().Running()
}

// Sessions returns the number of live connections.
func (l *Listener) Sessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// Start binds the endpoint in the background. It is a no-op while starting
// or listening. Calling it while failed skips the pending retry delay.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startLocked()
}

func (l *Listener) startLocked() {
	switch l.state.Status {
	case StatusStarting, StatusListening:
		return
	}
	if l.retry != nil {
		l.retry.Stop()
		l.retry = nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.setStateLocked(State{Status: StatusStarting})
	go l.run(ctx, l.gen)
}

// Stop closes the endpoint, cancels every live session and clears the
// session set. It is idempotent and safe to call from any goroutine.
func (l *Listener) Stop() {
	l.mu.Lock()
	if l.state.Status == StatusStopped {
		l.mu.Unlock()
		return
	}
	l.gen++
	if l.retry != nil {
		l.retry.Stop()
		l.retry = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.ln != nil {
		l.ln.Close()
		l.ln = nil
	}
	sessions := l.sessions
	l.sessions = make(map[*Session]struct{})
	l.setStateLocked(State{Status: StatusStopped})
	l.mu.Unlock()

	for s := range sessions {
		s.Close()
	}
}

func (l *Listener) run(ctx context.Context, gen uint64) {
	ln, err := l.transport.listen()
	if err != nil {
		l.fail(gen, fmt.Errorf("bind: %w", err))
		return
	}

	l.mu.Lock()
	if gen != l.gen || ctx.Err() != nil {
		l.mu.Unlock()
		ln.Close()
		return
	}
	l.ln = ln
	l.setStateLocked(State{Status: StatusListening, Addr: ln.Addr()})
	l.mu.Unlock()

	err = l.transport.serve(ctx, ln, l.spawner(gen))
	if ctx.Err() != nil {
		return
	}
	l.fail(gen, fmt.Errorf("accept: %w", err))
}

// fail records a listener-level error and schedules the next start.
func (l *Listener) fail(gen uint64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.ln != nil {
		l.ln.Close()
		l.ln = nil
	}
	l.setStateLocked(State{Status: StatusFailed, Err: err})
	l.logger.Warn("listener failed, retrying", "error", err, "retry_in", l.retryDelay)
	var timer *time.Timer
	timer = time.AfterFunc(l.retryDelay, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// A manual Start or a later failure replaces l.retry.
		if gen != l.gen || l.retry != timer || l.state.Status != StatusFailed {
			return
		}
		l.retry = nil
		l.startLocked()
	})
	l.retry = timer
}

func (l *Listener) spawner(gen uint64) spawnFunc {
	return func(recv receiver, remote string) *Session {
		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			return nil
		}
		s := newSession(recv, remote, l.publisher, l.logger, l.untrack)
		l.sessions[s] = struct{}{}
		return s
	}
}

// untrack removes a finished session. Removing an absent session is a no-op.
func (l *Listener) untrack(s *Session) {
	l.mu.Lock()
	delete(l.sessions, s)
	l.mu.Unlock()
}

func (l *Listener) setStateLocked(s State) {
	l.state = s
	switch s.Status {
	case StatusListening:
		l.logger.Info("listening", "addr", s.Addr.String())
	case StatusStopped:
		l.logger.Info("stopped")
	case StatusStarting:
		l.logger.Debug("starting")
	}
	for _, fn := range l.observers {
		fn(s)
	}
}
