package listener

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// wsTransport accepts WebSocket upgrades on any path; each message carries
// one record.
type wsTransport struct {
	addr       string
	maxPayload int
	logger     *slog.Logger
}

func (t *wsTransport) listen() (net.Listener, error) {
	return net.Listen("tcp", t.addr)
}

func (t *wsTransport) serve(ctx context.Context, ln net.Listener, spawn spawnFunc) error {
	srv := &http.Server{
		Handler:           t.handler(spawn),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(t.logger.Handler(), slog.LevelDebug),
	}
	stop := context.AfterFunc(ctx, func() { srv.Close() })
	defer stop()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return net.ErrClosed
	}
	return err
}

func (t *wsTransport) handler(spawn spawnFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			t.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		conn.SetReadLimit(int64(t.maxPayload))

		s := spawn(&messageReceiver{conn: conn}, r.RemoteAddr)
		if s == nil {
			conn.Close(websocket.StatusGoingAway, "listener stopped")
			return
		}
		// The connection is bound to this handler; run the session inline.
		s.Run()
	})
}

// messageReceiver yields one payload per WebSocket message. Pings are
// answered by the library while Read is pending.
type messageReceiver struct {
	conn *websocket.Conn
}

func (m *messageReceiver) Receive(ctx context.Context) ([][]byte, error) {
	_, data, err := m.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return [][]byte{data}, nil
}

func (m *messageReceiver) Close() error {
	return m.conn.CloseNow()
}
