// Package log provides structured protocol logging for the uwbd client.
//
// This package defines the Logger interface and Event types for capturing
// client-side protocol events at multiple layers (transport, wire, service).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	client.SetLogger(log.NewSlogAdapter(slog.Default()), connID)
//
//	// For capture: write to binary file
//	capture, _ := log.NewFileLogger("/var/log/uwbd/client.ulog")
//
//	// Both: use MultiLogger
//	client.SetLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    capture,
//	), connID)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Wire: Decoded messages (MessageEvent)
//   - Service: Adapter state changes (StateChangeEvent), ranging session
//     lifecycle (SessionEvent), and errors (ErrorEventData)
//
// Events are CBOR-encoded with integer keys for compact capture files.
package log
