package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level (Warn for errors).
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	level := slog.LevelDebug
	msg := "protocol event"

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
		msg = "frame"
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("msg_type", event.Message.Type.String()),
			slog.Uint64("msg_id", uint64(event.Message.MessageID)),
		)
		if event.Message.Operation != nil {
			attrs = append(attrs, slog.Uint64("operation", uint64(*event.Message.Operation)))
		}
		if event.Message.Status != nil {
			attrs = append(attrs, slog.Uint64("status", uint64(*event.Message.Status)))
		}
		if event.Message.EventType != nil {
			attrs = append(attrs, slog.Uint64("event_type", uint64(*event.Message.EventType)))
		}
		msg = "message"
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.Bool("enabled", event.StateChange.Enabled),
			slog.Int64("raw_reason", int64(event.StateChange.RawReason)),
			slog.String("reason", event.StateChange.Reason),
		)
		msg = "adapter state changed"
	case event.Session != nil:
		attrs = append(attrs,
			slog.String("session", event.Session.Handle),
			slog.String("phase", event.Session.Phase),
		)
		if event.Session.RawCloseReason != nil {
			attrs = append(attrs, slog.Int64("raw_close_reason", int64(*event.Session.RawCloseReason)))
		}
		msg = "ranging session"
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Op != "" {
			attrs = append(attrs, slog.String("op", event.Error.Op))
		}
		level = slog.LevelWarn
		msg = "protocol error"
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
