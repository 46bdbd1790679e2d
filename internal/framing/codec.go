// Package framing implements the length-prefixed envelope used on the
// framed-TCP transport: a 4-byte big-endian unsigned payload length followed
// by that many payload bytes.
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
)

// HeaderSize is the length of the frame header in bytes.
const HeaderSize = 4

// DefaultMaxPayload is the payload ceiling used when none is configured.
// The wire format declares no maximum; 16 MB comfortably holds a record with
// large bodies while keeping a hostile or corrupt length from exhausting
// memory.
const DefaultMaxPayload = 16 * 1024 * 1024

// ErrFrameTooLarge is returned when a header announces a payload above the
// decoder's ceiling. The stream cannot be resynchronized afterwards.
var ErrFrameTooLarge = errors.New("frame payload exceeds maximum size")

// Decoder reassembles frames from an append-only byte stream. Bytes are
// appended with Write as they arrive; complete payloads are taken with Next
// or Frames. A Decoder is not safe for concurrent use.
type Decoder struct {
	maxPayload int
	buf        []byte
	off        int
	err        error
}

// NewDecoder returns a Decoder that rejects payloads larger than maxPayload.
// A non-positive maxPayload selects DefaultMaxPayload.
func NewDecoder(maxPayload int) *Decoder {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Decoder{maxPayload: maxPayload}
}

// Write appends stream bytes. It never fails; framing errors surface from
// Next.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.off > 0 && d.off >= len(d.buf)/2 {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Buffered returns the number of bytes received but not yet consumed.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}

// Next returns the next complete payload. ok is false when the buffered bytes
// do not yet hold a whole frame; nothing is consumed in that case. Once a
// framing error is returned the Decoder returns it forever.
func (d *Decoder) Next() (payload []byte, ok bool, err error) {
	if d.err != nil {
		return nil, false, d.err
	}
	avail := d.buf[d.off:]
	if len(avail) < HeaderSize {
		return nil, false, nil
	}
	n := binary.BigEndian.Uint32(avail[:HeaderSize])
	if uint64(n) > uint64(d.maxPayload) {
		d.err = fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, d.maxPayload)
		return nil, false, d.err
	}
	end := HeaderSize + int(n)
	if len(avail) < end {
		return nil, false, nil
	}
	payload = make([]byte, n)
	copy(payload, avail[HeaderSize:end])
	d.off += end
	if d.off == len(d.buf) {
		d.buf = d.buf[:0]
		d.off = 0
	}
	return payload, true, nil
}

// Frames yields every complete payload currently buffered, in stream order.
// Iteration stops at the first incomplete frame or framing error (yielded
// with a nil payload). Ranging again after more Writes resumes where the
// previous pass stopped.
func (d *Decoder) Frames() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			payload, ok, err := d.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(payload, nil) {
				return
			}
		}
	}
}

// Encode returns the frame for payload: header followed by the payload.
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// WriteFrame writes one frame to w in a single Write call so concurrent
// writers that serialize on w cannot interleave a header with another
// frame's payload.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
