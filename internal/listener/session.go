package listener

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sadopc/appmonitor/internal/framing"
	"github.com/sadopc/appmonitor/internal/record"
)

// Publisher receives every record decoded by a session. Implementations must
// be safe for concurrent use and must not block for long: the session does
// not issue its next receive until Publish returns.
type Publisher interface {
	Publish(record.LogRecord)
}

// receiver is the transport-specific half of a session. Receive blocks until
// at least one byte or message arrives and returns every complete payload it
// produced. An error, returned alongside any payloads completed before it,
// ends the session.
type receiver interface {
	Receive(ctx context.Context) ([][]byte, error)
	Close() error
}

var sessionSeq atomic.Uint64

// Session owns one accepted connection and runs its receive loop.
type Session struct {
	id        uint64
	remote    string
	recv      receiver
	publisher Publisher
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	finishOnce sync.Once
	onFinish   func(*Session)
	done       chan struct{}
}

func newSession(recv receiver, remote string, publisher Publisher, logger *slog.Logger, onFinish func(*Session)) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := sessionSeq.Add(1)
	return &Session{
		id:        id,
		remote:    remote,
		recv:      recv,
		publisher: publisher,
		logger:    logger.With("session", id, "remote", remote),
		ctx:       ctx,
		cancel:    cancel,
		onFinish:  onFinish,
		done:      make(chan struct{}),
	}
}

// Remote returns the peer address.
func (s *Session) Remote() string { return s.remote }

// Done is closed once the receive loop has exited and the session has been
// unregistered.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close cancels the session. The receive loop exits promptly; Close does not
// wait for it.
func (s *Session) Close() {
	s.cancel()
	s.recv.Close()
}

// Run drives the receive loop until the peer disconnects, the transport
// fails, or the session is closed.
func (s *Session) Run() {
	defer s.finish()
	s.logger.Info("client connected")

	for {
		payloads, err := s.recv.Receive(s.ctx)
		for _, payload := range payloads {
			s.handle(payload)
		}
		if err == nil {
			continue
		}

		switch {
		case s.ctx.Err() != nil:
			s.logger.Debug("session cancelled")
		case IsExpectedCloseError(err):
			s.logger.Info("client disconnected")
		case errors.Is(err, framing.ErrFrameTooLarge):
			s.logger.Warn("closing connection on framing error", "error", err)
		default:
			s.logger.Warn("closing connection on receive error", "error", err)
		}
		return
	}
}

func (s *Session) handle(payload []byte) {
	r, err := record.Decode(payload)
	if err != nil {
		var de *record.DecodeError
		if errors.As(err, &de) {
			s.logger.Warn("dropping undecodable message", "error", err, "payload", de.Raw)
		} else {
			s.logger.Warn("dropping undecodable message", "error", err)
		}
		return
	}
	s.publisher.Publish(r)
}

func (s *Session) finish() {
	s.finishOnce.Do(func() {
		s.cancel()
		s.recv.Close()
		if s.onFinish != nil {
			s.onFinish(s)
		}
		close(s.done)
	})
}
