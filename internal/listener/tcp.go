package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/sadopc/appmonitor/internal/framing"
)

// readBufferSize is the per-connection read chunk size.
const readBufferSize = 32 * 1024

// tcpTransport accepts raw TCP connections carrying length-prefixed frames.
type tcpTransport struct {
	addr       string
	advertiser Advertiser
	maxPayload int
	logger     *slog.Logger
}

func (t *tcpTransport) listen() (net.Listener, error) {
	return net.Listen("tcp", t.addr)
}

func (t *tcpTransport) serve(ctx context.Context, ln net.Listener, spawn spawnFunc) error {
	if t.advertiser != nil {
		port := 0
		if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
			port = tcp.Port
		}
		withdraw, err := t.advertiser.Advertise(port)
		if err != nil {
			t.logger.Warn("service advertisement failed, peers need the address", "error", err)
		} else {
			t.logger.Info("service advertised", "port", port)
			defer withdraw()
		}
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		s := spawn(newFrameReceiver(conn, t.maxPayload), conn.RemoteAddr().String())
		if s == nil {
			conn.Close()
			continue
		}
		go s.Run()
	}
}

// frameReceiver reads stream chunks and reassembles frames.
type frameReceiver struct {
	conn net.Conn
	dec  *framing.Decoder
	buf  []byte
}

func newFrameReceiver(conn net.Conn, maxPayload int) *frameReceiver {
	return &frameReceiver{
		conn: conn,
		dec:  framing.NewDecoder(maxPayload),
		buf:  make([]byte, readBufferSize),
	}
}

// Receive performs one read. Cancellation is delivered by Close, which
// unblocks the pending read. EOF with a partial frame still buffered is
// reported as io.ErrUnexpectedEOF, not as an orderly close.
func (f *frameReceiver) Receive(ctx context.Context) ([][]byte, error) {
	n, readErr := f.conn.Read(f.buf)
	if n > 0 {
		f.dec.Write(f.buf[:n])
	}

	var payloads [][]byte
	for payload, err := range f.dec.Frames() {
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, payload)
	}
	if errors.Is(readErr, io.EOF) && f.dec.Buffered() > 0 {
		return payloads, fmt.Errorf("connection closed mid-frame with %d bytes buffered: %w",
			f.dec.Buffered(), io.ErrUnexpectedEOF)
	}
	return payloads, readErr
}

func (f *frameReceiver) Close() error {
	return f.conn.Close()
}
