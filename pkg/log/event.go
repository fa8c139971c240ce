package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the daemon connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the daemon address (IP:port or socket path).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"`  // Transport layer
	Message     *MessageEvent     `cbor:"8,keyasint,omitempty"`  // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`  // Adapter state
	Session     *SessionEvent     `cbor:"10,keyasint,omitempty"` // Ranging session lifecycle
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message (daemon to client).
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message (client to daemon).
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the message encoding layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerService is the adapter/session layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (request/response/event).
	CategoryMessage Category = 0
	// CategoryState indicates an adapter state change.
	CategoryState Category = 1
	// CategorySession indicates a ranging session lifecycle event.
	CategorySession Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategorySession:
		return "SESSION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded protocol message at the wire layer.
type MessageEvent struct {
	// Type distinguishes request/response/event.
	Type MessageType `cbor:"1,keyasint"`

	// MessageID correlates request/response pairs (0 for events).
	MessageID uint32 `cbor:"2,keyasint"`

	// For requests: the operation code.
	Operation *uint8 `cbor:"3,keyasint,omitempty"`

	// For responses: the status code.
	Status *uint8 `cbor:"4,keyasint,omitempty"`

	// For events: the event type code.
	EventType *uint8 `cbor:"5,keyasint,omitempty"`

	// Decoded payload (CBOR-compatible representation).
	Payload any `cbor:"6,keyasint,omitempty"`
}

// MessageType distinguishes request/response/event.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a response message.
	MessageTypeResponse MessageType = 1
	// MessageTypeEvent indicates an unsolicited event message.
	MessageTypeEvent MessageType = 2
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypeEvent:
		return "EVENT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures an adapter state change at the service layer.
type StateChangeEvent struct {
	// Enabled is the new adapter enabled flag.
	Enabled bool `cbor:"1,keyasint"`

	// RawReason is the reason code as received from the daemon.
	RawReason int32 `cbor:"2,keyasint"`

	// Reason is the translated semantic reason name.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// SessionEvent captures a ranging session lifecycle event.
type SessionEvent struct {
	// Handle is the session handle (UUID).
	Handle string `cbor:"1,keyasint"`

	// Phase names the lifecycle phase (open-requested, opened, closed, report).
	Phase string `cbor:"2,keyasint"`

	// RawCloseReason is the close reason code, if Phase is "closed".
	RawCloseReason *int32 `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Op names the operation that failed (subscribe, dispatch, decode, ...).
	Op string `cbor:"2,keyasint,omitempty"`
}
