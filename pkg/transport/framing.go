package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/uwbd-protocol/uwbd-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize is the default maximum message size (16 KB).
	// uwbd control messages are small; ranging reports dominate and stay
	// well under this.
	DefaultMaxMessageSize = 16384

	// MaxLogFrameDataSize is the maximum frame data size to include in log
	// events (1 KB). Larger frames are truncated in the event.
	MaxLogFrameDataSize = 1024
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates an empty message.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the frame was cut short.
	ErrFrameTruncated = errors.New("frame truncated")
)

// Framer reads and writes length-prefixed frames on a daemon connection.
// WriteFrame is safe for concurrent use; ReadFrame must only be called
// from a single goroutine (the client's read loop).
type Framer struct {
	rw             io.ReadWriter
	maxMessageSize uint32
	writeMu        sync.Mutex
	lengthBuf      [LengthPrefixSize]byte

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewFramer creates a framer with the default max message size.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxMessageSize)
}

// NewFramerWithMaxSize creates a framer with a custom max message size.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	return &Framer{
		rw:             rw,
		maxMessageSize: maxSize,
	}
}

// SetLogger configures frame logging. Pass nil to disable.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.logger = logger
	f.connID = connID
}

// WriteFrame writes one length-prefixed frame.
func (f *Framer) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint32(len(data)) > f.maxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), f.maxMessageSize)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(data)))

	if _, err := f.rw.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := f.rw.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	if f.logger != nil {
		f.logger.Log(f.frameEvent(data, log.DirectionOut))
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and returns the payload
// (without the prefix).
func (f *Framer) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(f.rw, f.lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(f.lengthBuf[:])
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > f.maxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, f.maxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(f.rw, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}

	if f.logger != nil {
		f.logger.Log(f.frameEvent(payload, log.DirectionIn))
	}
	return payload, nil
}

// frameEvent builds the transport-layer log event for one frame.
func (f *Framer) frameEvent(data []byte, direction log.Direction) log.Event {
	frameData := data
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: f.connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      LengthPrefixSize + len(data),
			Data:      frameData,
			Truncated: truncated,
		},
	}
}
