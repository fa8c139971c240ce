package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EventMessageID marks a daemon frame as an unsolicited event.
// Request message IDs start at 1.
const EventMessageID uint32 = 0

// Request represents a client-to-daemon request.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32, never 0
//	  2: operation,   // uint8
//	  3: payload      // operation-specific, raw CBOR
//	}
type Request struct {
	MessageID uint32          `cbor:"1,keyasint"`
	Operation Operation       `cbor:"2,keyasint"`
	Payload   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// Validate checks if the request is well-formed.
func (r *Request) Validate() error {
	if r.MessageID == EventMessageID {
		return fmt.Errorf("messageId 0 is reserved for events")
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	return nil
}

// Response represents a daemon-to-client response.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32: matches request
//	  2: status,      // uint8: 0=success, or error code
//	  3: payload      // response data, raw CBOR (if any)
//	}
type Response struct {
	MessageID uint32          `cbor:"1,keyasint"`
	Status    Status          `cbor:"2,keyasint"`
	Payload   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// Event represents an unsolicited daemon-to-client event.
//
// CBOR encoding:
//
//	{
//	  1: 0,           // messageId 0 = event
//	  2: eventType,   // uint8
//	  3: payload      // event-specific, raw CBOR
//	}
type Event struct {
	MessageID uint32          `cbor:"1,keyasint"`
	Type      EventType       `cbor:"2,keyasint"`
	Payload   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// EventType identifies an unsolicited daemon event.
type EventType uint8

const (
	// EventStateChanged reports an adapter state change.
	EventStateChanged EventType = 1

	// EventSessionOpened reports that a ranging session opened.
	EventSessionOpened EventType = 2

	// EventSessionClosed reports that a ranging session closed or failed
	// to open.
	EventSessionClosed EventType = 3

	// EventRangingReport carries one ranging interval's measurements.
	EventRangingReport EventType = 4
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "STATE_CHANGED"
	case EventSessionOpened:
		return "SESSION_OPENED"
	case EventSessionClosed:
		return "SESSION_CLOSED"
	case EventRangingReport:
		return "RANGING_REPORT"
	default:
		return "UNKNOWN"
	}
}

// StateChangedPayload is the payload of EventStateChanged.
type StateChangedPayload struct {
	Enabled   bool  `cbor:"1,keyasint"`
	RawReason int32 `cbor:"2,keyasint"`
}

// OpenSessionPayload is the payload of OpOpenSession. The client allocates
// the handle; the daemon echoes it in session events.
type OpenSessionPayload struct {
	Handle string         `cbor:"1,keyasint"`
	Params map[string]any `cbor:"2,keyasint,omitempty"`
}

// CloseSessionPayload is the payload of OpCloseSession.
type CloseSessionPayload struct {
	Handle string `cbor:"1,keyasint"`
}

// SessionOpenedPayload is the payload of EventSessionOpened.
type SessionOpenedPayload struct {
	Handle string         `cbor:"1,keyasint"`
	Params map[string]any `cbor:"2,keyasint,omitempty"`
}

// SessionClosedPayload is the payload of EventSessionClosed.
type SessionClosedPayload struct {
	Handle    string         `cbor:"1,keyasint"`
	RawReason int32          `cbor:"2,keyasint"`
	Params    map[string]any `cbor:"3,keyasint,omitempty"`
}

// RangingReportPayload is the payload of EventRangingReport.
type RangingReportPayload struct {
	Handle       string        `cbor:"1,keyasint"`
	Measurements []Measurement `cbor:"2,keyasint"`
}

// Measurement is one peer's ranging result within a report.
type Measurement struct {
	// PeerAddr is the short MAC address of the measured peer.
	PeerAddr uint16 `cbor:"1,keyasint"`

	// DistanceMM is the measured distance in millimeters.
	DistanceMM int32 `cbor:"2,keyasint"`

	// AzimuthCdeg is the azimuth angle of arrival in centidegrees.
	AzimuthCdeg int32 `cbor:"3,keyasint,omitempty"`

	// ElevationCdeg is the elevation angle of arrival in centidegrees.
	ElevationCdeg int32 `cbor:"4,keyasint,omitempty"`

	// Valid indicates whether the measurement succeeded this interval.
	Valid bool `cbor:"5,keyasint"`
}
