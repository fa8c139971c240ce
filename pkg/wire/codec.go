package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for uwbd messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for uwbd messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding for forward compatibility with newer daemons
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodeRequest marshals a request with the given payload. A nil payload
// is omitted from the frame.
func EncodeRequest(messageID uint32, op Operation, payload any) ([]byte, error) {
	req := Request{MessageID: messageID, Operation: op}
	if payload != nil {
		raw, err := Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		req.Payload = raw
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return Marshal(&req)
}

// EncodeEvent marshals an event with the given payload. Used by test
// doubles and daemon implementations.
func EncodeEvent(typ EventType, payload any) ([]byte, error) {
	ev := Event{MessageID: EventMessageID, Type: typ}
	if payload != nil {
		raw, err := Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		ev.Payload = raw
	}
	return Marshal(&ev)
}

// EncodeResponse marshals a response. Used by test doubles and daemon
// implementations.
func EncodeResponse(messageID uint32, status Status, payload any) ([]byte, error) {
	resp := Response{MessageID: messageID, Status: status}
	if payload != nil {
		raw, err := Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		resp.Payload = raw
	}
	return Marshal(&resp)
}

// inboundProbe reads just enough of an inbound frame to classify it.
type inboundProbe struct {
	MessageID uint32 `cbor:"1,keyasint"`
}

// DecodeInbound decodes a daemon-to-client frame into either a Response or
// an Event. Exactly one of the two returns is non-nil on success.
func DecodeInbound(data []byte) (*Response, *Event, error) {
	var probe inboundProbe
	if err := Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("decode frame: %w", err)
	}

	if probe.MessageID == EventMessageID {
		var ev Event
		if err := Unmarshal(data, &ev); err != nil {
			return nil, nil, fmt.Errorf("decode event: %w", err)
		}
		return nil, &ev, nil
	}

	var resp Response
	if err := Unmarshal(data, &resp); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil, nil
}
