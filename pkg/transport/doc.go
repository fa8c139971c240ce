// Package transport implements the framed connection to a uwbd daemon.
//
// Frames are length-prefixed (4-byte big-endian) CBOR messages as defined
// by pkg/wire. Client correlates responses to requests by message ID and
// routes unsolicited events to the registered adapter state handle and
// per-session sinks.
//
// A Client implements adapter.Service; pkg/session uses it to open and
// close ranging sessions.
package transport
