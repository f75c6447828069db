package messaging

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// MaxFrameSize bounds a single message in either direction, matching the
// browser's native-messaging limit for host-to-browser messages.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned for frames whose length prefix exceeds
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("messaging: frame too large")

// Conn speaks native-messaging framing: a 32-bit little-endian length
// followed by that many bytes of UTF-8 JSON. Writes are serialized so the
// reply loop and the page notifier can share one stream.
type Conn struct {
	r  io.Reader
	mu sync.Mutex
	w  io.Writer
}

// NewConn wraps a reader/writer pair, typically stdin/stdout.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: r, w: w}
}

// ReadFrame returns the next frame payload. A clean end of stream between
// frames is reported as io.EOF.
func (c *Conn) ReadFrame() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteJSON marshals v and writes it as one frame.
func (c *Conn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(b) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(b))
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(b)))
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = c.w.Write(b)
	return err
}

// StreamNotifier sends READER_MODE_DISABLED over a Conn.
type StreamNotifier struct {
	Conn *Conn
}

func (n *StreamNotifier) ReaderModeDisabled() error {
	return n.Conn.WriteJSON(Message{Type: TypeDisabled})
}

type frameResult struct {
	data []byte
	err  error
}

// Serve reads frames from c and dispatches them to h one at a time until the
// stream ends (nil), ctx is canceled, or the stream breaks. Frames that are
// not valid JSON messages are logged and skipped.
//
// On cancellation Serve returns at once, but the reading goroutine stays
// blocked in ReadFrame until the underlying reader yields or is closed. The
// host reads stdin for the life of the process, so it is left to exit with
// the process; other callers should close the reader after Serve returns.
func Serve(ctx context.Context, c *Conn, h *Handler) error {
	frames := make(chan frameResult)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			b, err := c.ReadFrame()
			select {
			case frames <- frameResult{data: b, err: err}:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fr := <-frames:
			if fr.err != nil {
				if errors.Is(fr.err, io.EOF) {
					return nil
				}
				return fr.err
			}
			var msg Message
			if err := json.Unmarshal(fr.data, &msg); err != nil {
				log.Warn().Err(err).Int("bytes", len(fr.data)).Msg("skipping malformed message")
				continue
			}
			if resp := h.Handle(msg); resp != nil {
				if err := c.WriteJSON(resp); err != nil {
					return fmt.Errorf("write response: %w", err)
				}
			}
		}
	}
}
