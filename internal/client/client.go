// Package client is the sending side of the ingestion protocol. It is what an
// instrumented process (or the send command) uses to stream records to a
// running monitor.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/sadopc/appmonitor/internal/framing"
	"github.com/sadopc/appmonitor/internal/record"
)

// Sender delivers records to a monitor.
type Sender interface {
	Send(ctx context.Context, r record.LogRecord) error
	Close() error
}

// TCPClient sends length-prefixed frames over one TCP connection. Sends are
// serialized so frames never interleave.
type TCPClient struct {
	mu   sync.Mutex
	conn net.Conn
}

// DialTCP connects to a framed-TCP listener at addr (host:port).
func DialTCP(ctx context.Context, addr string) (*TCPClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &TCPClient{conn: conn}, nil
}

// Send encodes r and writes it as one frame. The context deadline, if any,
// bounds the write.
func (c *TCPClient) Send(ctx context.Context, r record.LogRecord) error {
	payload, err := record.Encode(r)
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, payload)
}

// SendRaw writes payload as one frame without validating it.
func (c *TCPClient) SendRaw(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return framing.WriteFrame(c.conn, payload)
}

// Close closes the connection.
func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// WSClient sends one record per WebSocket text message.
type WSClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebSocket connects to a WebSocket listener, e.g. ws://host:9876/.
func DialWebSocket(ctx context.Context, url string) (*WSClient, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	// The monitor never writes data; reading in the background keeps
	// control frames flowing.
	conn.CloseRead(context.Background())
	return &WSClient{conn: conn}, nil
}

// Send writes r as a text message.
func (c *WSClient) Send(ctx context.Context, r record.LogRecord) error {
	payload, err := record.Encode(r)
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, payload)
}

// SendRaw writes payload as one text message.
func (c *WSClient) SendRaw(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.Write(ctx, websocket.MessageText, payload)
}

// Close performs the closing handshake.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "client closed")
	c.conn = nil
	return err
}
