// Package wire defines the CBOR wire format for the uwbd control protocol.
//
// The client exchanges CBOR (RFC 8949) messages with integer keys over a
// length-prefixed framed connection (see pkg/transport).
//
// # Message Types
//
// There are three message types:
//   - Request: Client to daemon (subscribe/unsubscribe state, open/close session)
//   - Response: Daemon to client, correlated by message ID
//   - Event: Unsolicited daemon to client (state changes, session lifecycle,
//     ranging reports); message ID 0 marks a frame as an event
//
// # CBOR Integer Keys
//
// All maps use integer keys for compactness. Payloads are carried as raw
// CBOR and decoded based on the operation or event type.
package wire
